package game

import "sort"

// Seat numbers run 1 through 6.
const (
	MinSeat  = 1
	MaxSeat  = 6
	NumSeats = MaxSeat - MinSeat + 1
)

// Seating maps seat numbers to players, unique both ways: no seat holds
// two players and no player holds two seats. It persists across rounds
// and is mutated only by join and leave, never by round play.
type Seating struct {
	seats map[int]PlayerID
}

// NewSeating creates an empty seating map.
func NewSeating() *Seating {
	return &Seating{seats: make(map[int]PlayerID)}
}

// Join seats a player. A requested seat of zero (or any value outside
// 1-6) means "lowest free seat". A specific requested seat held by
// someone else fails with ErrSeatOccupied rather than falling back.
func (s *Seating) Join(player PlayerID, requested int) (int, error) {
	if _, ok := s.SeatOf(player); ok {
		return 0, ErrAlreadySeated
	}
	if requested >= MinSeat && requested <= MaxSeat {
		if _, taken := s.seats[requested]; taken {
			return 0, ErrSeatOccupied
		}
		s.seats[requested] = player
		return requested, nil
	}
	for seat := MinSeat; seat <= MaxSeat; seat++ {
		if _, taken := s.seats[seat]; !taken {
			s.seats[seat] = player
			return seat, nil
		}
	}
	return 0, ErrTableFull
}

// Leave removes the player's seat. Returns false if the player was not
// seated.
func (s *Seating) Leave(player PlayerID) bool {
	seat, ok := s.SeatOf(player)
	if !ok {
		return false
	}
	delete(s.seats, seat)
	return true
}

// SeatOf returns the seat a player holds.
func (s *Seating) SeatOf(player PlayerID) (int, bool) {
	for seat, p := range s.seats {
		if p == player {
			return seat, true
		}
	}
	return 0, false
}

// Players returns the seated players in seat order.
func (s *Seating) Players() []PlayerID {
	seats := make([]int, 0, len(s.seats))
	for seat := range s.seats {
		seats = append(seats, seat)
	}
	sort.Ints(seats)
	players := make([]PlayerID, len(seats))
	for i, seat := range seats {
		players[i] = s.seats[seat]
	}
	return players
}

// Len returns the number of seated players.
func (s *Seating) Len() int { return len(s.seats) }

// Empty reports whether no one is seated.
func (s *Seating) Empty() bool { return len(s.seats) == 0 }
