package deck

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

const (
	// MinDecks and MaxDecks bound the shoe size
	MinDecks = 1
	MaxDecks = 8

	deckSize = 52
)

// ErrEmptyShoe is returned when a draw is attempted on an exhausted shoe.
// A properly sized shoe never runs out mid-round, so hitting this
// indicates a configuration or dealing bug rather than normal play.
var ErrEmptyShoe = errors.New("shoe is empty")

// CardReceiver accepts cards dealt from a shoe. Implemented by game.Hand.
type CardReceiver interface {
	AddCard(Card)
}

// Shoe is a draw pile built from one or more standard 52-card decks.
// It is owned by a single session and rebuilt at the start of each round.
type Shoe struct {
	cards []Card
	rng   *rand.Rand
}

// NewShoe builds a shoe of deckCount standard decks. The rng is used for
// shuffling; pass nil for a time-seeded source.
func NewShoe(deckCount int, rng *rand.Rand) (*Shoe, error) {
	if deckCount < MinDecks || deckCount > MaxDecks {
		return nil, fmt.Errorf("deck count must be between %d and %d, got %d", MinDecks, MaxDecks, deckCount)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Shoe{
		cards: make([]Card, 0, deckCount*deckSize),
		rng:   rng,
	}
	for d := 0; d < deckCount; d++ {
		for suit := Clubs; suit <= Spades; suit++ {
			for rank := Ace; rank <= King; rank++ {
				s.cards = append(s.cards, Card{Suit: suit, Rank: rank})
			}
		}
	}
	return s, nil
}

// NewShoeFromCards builds an unshuffled shoe that yields the given cards
// in order. Used to rig deals in tests.
func NewShoeFromCards(cards ...Card) *Shoe {
	s := &Shoe{cards: make([]Card, len(cards))}
	for i, c := range cards {
		s.cards[len(cards)-1-i] = c
	}
	return s
}

// Shuffle performs an unbiased permutation of the remaining cards.
func (s *Shoe) Shuffle() {
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	for i := len(s.cards) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
}

// Draw removes and returns the top card.
func (s *Shoe) Draw() (Card, error) {
	if len(s.cards) == 0 {
		return Card{}, ErrEmptyShoe
	}
	card := s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	return card, nil
}

// MoveCards draws n cards and appends them to the receiver in draw order.
func (s *Shoe) MoveCards(h CardReceiver, n int) error {
	for i := 0; i < n; i++ {
		card, err := s.Draw()
		if err != nil {
			return err
		}
		h.AddCard(card)
	}
	return nil
}

// Remaining returns the number of cards left in the shoe.
func (s *Shoe) Remaining() int {
	return len(s.cards)
}
