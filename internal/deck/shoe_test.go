package deck

import (
	"errors"
	"math/rand"
	"testing"
)

func TestNewShoeSize(t *testing.T) {
	for decks := MinDecks; decks <= MaxDecks; decks++ {
		shoe, err := NewShoe(decks, rand.New(rand.NewSource(42)))
		if err != nil {
			t.Fatalf("NewShoe(%d) failed: %v", decks, err)
		}
		if shoe.Remaining() != decks*52 {
			t.Errorf("Expected %d cards, got %d", decks*52, shoe.Remaining())
		}
	}
}

func TestNewShoeBounds(t *testing.T) {
	if _, err := NewShoe(0, nil); err == nil {
		t.Error("Expected error for zero decks")
	}
	if _, err := NewShoe(9, nil); err == nil {
		t.Error("Expected error for nine decks")
	}
}

func TestShoeDrawAll(t *testing.T) {
	shoe, err := NewShoe(1, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatal(err)
	}
	shoe.Shuffle()

	seen := make(map[Card]int)
	for i := 0; i < 52; i++ {
		card, err := shoe.Draw()
		if err != nil {
			t.Fatalf("Draw %d failed: %v", i+1, err)
		}
		seen[card]++
	}
	if len(seen) != 52 {
		t.Errorf("Expected 52 distinct cards, got %d", len(seen))
	}

	_, err = shoe.Draw()
	if !errors.Is(err, ErrEmptyShoe) {
		t.Errorf("Expected ErrEmptyShoe, got %v", err)
	}
}

func TestShoeShuffleChangesOrder(t *testing.T) {
	ordered, _ := NewShoe(1, rand.New(rand.NewSource(42)))
	shuffled, _ := NewShoe(1, rand.New(rand.NewSource(42)))
	shuffled.Shuffle()

	same := true
	for i := 0; i < 10; i++ {
		a, _ := ordered.Draw()
		b, _ := shuffled.Draw()
		if a != b {
			same = false
			break
		}
	}
	if same {
		t.Error("Shuffle left first ten cards in factory order")
	}
}

func TestNewShoeFromCardsOrder(t *testing.T) {
	rigged := MustParseCards("AsKd8h")
	shoe := NewShoeFromCards(rigged...)
	for i, want := range rigged {
		got, err := shoe.Draw()
		if err != nil {
			t.Fatalf("Draw %d failed: %v", i+1, err)
		}
		if got != want {
			t.Errorf("Draw %d: expected %s, got %s", i+1, want, got)
		}
	}
}

type cardSink struct {
	cards []Card
}

func (c *cardSink) AddCard(card Card) { c.cards = append(c.cards, card) }

func TestMoveCards(t *testing.T) {
	shoe := NewShoeFromCards(MustParseCards("AsKdQh")...)
	sink := &cardSink{}

	if err := shoe.MoveCards(sink, 2); err != nil {
		t.Fatalf("MoveCards failed: %v", err)
	}
	if len(sink.cards) != 2 || shoe.Remaining() != 1 {
		t.Errorf("Expected 2 moved and 1 remaining, got %d and %d", len(sink.cards), shoe.Remaining())
	}
	if sink.cards[0] != (Card{Spades, Ace}) {
		t.Errorf("Expected A♠ first, got %s", sink.cards[0])
	}

	if err := shoe.MoveCards(sink, 2); !errors.Is(err, ErrEmptyShoe) {
		t.Errorf("Expected ErrEmptyShoe, got %v", err)
	}
}
