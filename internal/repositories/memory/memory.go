// Package memory provides map-backed implementations of the repository
// interfaces. They are used by the service tests so the settlement logic
// can be exercised without a running MongoDB.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lottoroom/lottoroom-backend/internal/models"
	"github.com/lottoroom/lottoroom-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoomRepository is an in-memory repositories.RoomRepository
type RoomRepository struct {
	mu    sync.RWMutex
	rooms map[primitive.ObjectID]*models.Room
}

// NewRoomRepository creates an empty in-memory room repository
func NewRoomRepository() *RoomRepository {
	return &RoomRepository{rooms: make(map[primitive.ObjectID]*models.Room)}
}

func (r *RoomRepository) Create(_ context.Context, room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room.ID.IsZero() {
		room.ID = primitive.NewObjectID()
	}
	room.CreatedAt = time.Now()
	room.UpdatedAt = room.CreatedAt
	cp := *room
	r.rooms[room.ID] = &cp
	return nil
}

func (r *RoomRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *room
	return &cp, nil
}

func (r *RoomRepository) Update(_ context.Context, room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[room.ID]; !ok {
		return repositories.ErrNotFound
	}
	room.UpdatedAt = time.Now()
	cp := *room
	r.rooms[room.ID] = &cp
	return nil
}

func (r *RoomRepository) FindAll(_ context.Context) ([]*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := make([]*models.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		cp := *room
		rooms = append(rooms, &cp)
	}
	return rooms, nil
}

func (r *RoomRepository) FindByState(_ context.Context, state models.RoomState) ([]*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var rooms []*models.Room
	for _, room := range r.rooms {
		if room.State == state {
			cp := *room
			rooms = append(rooms, &cp)
		}
	}
	return rooms, nil
}

// TicketRepository is an in-memory repositories.TicketRepository
type TicketRepository struct {
	mu      sync.RWMutex
	tickets []*models.Ticket
}

// NewTicketRepository creates an empty in-memory ticket repository
func NewTicketRepository() *TicketRepository {
	return &TicketRepository{}
}

func (r *TicketRepository) Create(_ context.Context, ticket *models.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = primitive.NewObjectID()
	cp := *ticket
	r.tickets = append(r.tickets, &cp)
	return nil
}

func (r *TicketRepository) FindByRoomAndRound(_ context.Context, roomID primitive.ObjectID, round int64) ([]*models.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Ticket{}
	for _, t := range r.tickets {
		if t.RoomID == roomID && t.RoundNumber == round {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *TicketRepository) FindByRoomRoundAndIndex(_ context.Context, roomID primitive.ObjectID, round, index int64) (*models.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tickets {
		if t.RoomID == roomID && t.RoundNumber == round && t.Index == index {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *TicketRepository) FindByOwner(_ context.Context, roomID primitive.ObjectID, round int64, ownerID primitive.ObjectID) ([]*models.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Ticket{}
	for _, t := range r.tickets {
		if t.RoomID == roomID && t.RoundNumber == round && t.OwnerID == ownerID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *TicketRepository) CountByRoomAndRound(_ context.Context, roomID primitive.ObjectID, round int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, t := range r.tickets {
		if t.RoomID == roomID && t.RoundNumber == round {
			n++
		}
	}
	return n, nil
}

func (r *TicketRepository) CountWinners(_ context.Context, roomID primitive.ObjectID, round int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, t := range r.tickets {
		if t.RoomID == roomID && t.RoundNumber == round && t.Win {
			n++
		}
	}
	return n, nil
}

func (r *TicketRepository) MarkWinners(_ context.Context, roomID primitive.ObjectID, round int64, number int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.tickets {
		if t.RoomID == roomID && t.RoundNumber == round && t.IsWinner(number) && !t.Win {
			t.Win = true
			n++
		}
	}
	return n, nil
}

func (r *TicketRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.tickets {
		if t.ID == id {
			r.tickets = append(r.tickets[:i], r.tickets[i+1:]...)
			return nil
		}
	}
	return nil
}

// ClaimRepository is an in-memory repositories.ClaimRepository
type ClaimRepository struct {
	mu     sync.RWMutex
	claims []*models.ClaimRecord
}

// NewClaimRepository creates an empty in-memory claim repository
func NewClaimRepository() *ClaimRepository {
	return &ClaimRepository{}
}

func (r *ClaimRepository) Create(_ context.Context, claim *models.ClaimRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	claim.ID = primitive.NewObjectID()
	cp := *claim
	r.claims = append(r.claims, &cp)
	return nil
}

func (r *ClaimRepository) Find(_ context.Context, roomID primitive.ObjectID, round, ticketIndex int64) (*models.ClaimRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.claims {
		if c.RoomID == roomID && c.RoundNumber == round && c.TicketIndex == ticketIndex {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *ClaimRepository) CountByRoomAndRound(_ context.Context, roomID primitive.ObjectID, round int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, c := range r.claims {
		if c.RoomID == roomID && c.RoundNumber == round {
			n++
		}
	}
	return n, nil
}

func (r *ClaimRepository) Delete(_ context.Context, roomID primitive.ObjectID, round, ticketIndex int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.claims {
		if c.RoomID == roomID && c.RoundNumber == round && c.TicketIndex == ticketIndex {
			r.claims = append(r.claims[:i], r.claims[i+1:]...)
			return nil
		}
	}
	return nil
}

// PlayerStatsRepository is an in-memory repositories.PlayerStatsRepository
type PlayerStatsRepository struct {
	mu    sync.RWMutex
	stats map[primitive.ObjectID]*models.PlayerStats
}

// NewPlayerStatsRepository creates an empty in-memory stats repository
func NewPlayerStatsRepository() *PlayerStatsRepository {
	return &PlayerStatsRepository{stats: make(map[primitive.ObjectID]*models.PlayerStats)}
}

func (r *PlayerStatsRepository) FindByPlayer(_ context.Context, playerID primitive.ObjectID) (*models.PlayerStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stats[playerID]
	if !ok {
		return &models.PlayerStats{PlayerID: playerID, ByRoom: map[string]models.RoomStats{}}, nil
	}
	cp := *s
	cp.ByRoom = make(map[string]models.RoomStats, len(s.ByRoom))
	for k, v := range s.ByRoom {
		cp.ByRoom[k] = v
	}
	return &cp, nil
}

func (r *PlayerStatsRepository) get(playerID primitive.ObjectID) *models.PlayerStats {
	s, ok := r.stats[playerID]
	if !ok {
		s = &models.PlayerStats{PlayerID: playerID, ByRoom: map[string]models.RoomStats{}}
		r.stats[playerID] = s
	}
	return s
}

func (r *PlayerStatsRepository) IncrementTickets(_ context.Context, playerID, roomID primitive.ObjectID, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.get(playerID)
	s.TotalTickets += delta
	room := s.ByRoom[roomID.Hex()]
	room.Tickets += delta
	s.ByRoom[roomID.Hex()] = room
	s.UpdatedAt = time.Now()
	return nil
}

func (r *PlayerStatsRepository) IncrementWins(_ context.Context, playerID, roomID primitive.ObjectID, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.get(playerID)
	s.TotalWins += delta
	room := s.ByRoom[roomID.Hex()]
	room.Wins += delta
	s.ByRoom[roomID.Hex()] = room
	s.UpdatedAt = time.Now()
	return nil
}

func (r *PlayerStatsRepository) IncrementClaims(_ context.Context, playerID primitive.ObjectID, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.get(playerID)
	s.TotalClaims += delta
	s.UpdatedAt = time.Now()
	return nil
}

// FeeRepository is an in-memory repositories.FeeRepository
type FeeRepository struct {
	mu      sync.RWMutex
	account models.FeeAccount
}

// NewFeeRepository creates an empty in-memory fee repository
func NewFeeRepository() *FeeRepository {
	return &FeeRepository{}
}

func (r *FeeRepository) Get(_ context.Context) (*models.FeeAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := r.account
	return &cp, nil
}

func (r *FeeRepository) AddCollected(_ context.Context, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.account.Collected += amount
	r.account.UpdatedAt = time.Now()
	return nil
}

func (r *FeeRepository) AddWithdrawn(_ context.Context, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.account.Withdrawn += amount
	r.account.UpdatedAt = time.Now()
	return nil
}

func (r *FeeRepository) SetRecipient(_ context.Context, recipient string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.account.Recipient = recipient
	r.account.UpdatedAt = time.Now()
	return nil
}

// SystemStatusRepository is an in-memory repositories.SystemStatusRepository
type SystemStatusRepository struct {
	mu     sync.RWMutex
	status models.SystemStatus
}

// NewSystemStatusRepository creates an unpaused in-memory status repository
func NewSystemStatusRepository() *SystemStatusRepository {
	return &SystemStatusRepository{}
}

func (r *SystemStatusRepository) Get(_ context.Context) (*models.SystemStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := r.status
	return &cp, nil
}

func (r *SystemStatusRepository) SetPaused(_ context.Context, paused bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.Paused = paused
	r.status.UpdatedAt = time.Now()
	return nil
}

// UserRepository is an in-memory repositories.UserRepository
type UserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
}

// NewUserRepository creates an empty in-memory user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}
