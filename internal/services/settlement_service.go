package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lottoroom/lottoroom-backend/internal/commitment"
	"github.com/lottoroom/lottoroom-backend/internal/fees"
	"github.com/lottoroom/lottoroom-backend/internal/models"
	"github.com/lottoroom/lottoroom-backend/internal/repositories"
	"github.com/lottoroom/lottoroom-backend/pkg/tokenledger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure SettlementServiceImpl implements SettlementService
var _ SettlementService = (*SettlementServiceImpl)(nil)

// Error kinds surfaced by the settlement core. All fail closed: a returned
// error means no state change persisted (boundary failures are compensated
// before the operation returns).
var (
	ErrInvalidRoom           = errors.New("room not found")
	ErrInvalidState          = errors.New("operation not allowed in current room state")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidNumber         = errors.New("chosen number out of range")
	ErrInvalidOwner          = errors.New("caller is not the owner")
	ErrInvalidTicket         = errors.New("unknown, non-winning, or already claimed ticket")
	ErrInvalidAddress        = errors.New("invalid recipient address")
	ErrTransferFailed        = errors.New("boundary ledger transfer failed")
	ErrAlreadyRevealed       = errors.New("winning number already revealed")
	ErrInvalidVerification   = errors.New("commitment verification failed")
	ErrInsufficientAllowance = errors.New("entry fee not pre-authorized")
	ErrRoomNotResettable     = errors.New("room can only be reset from REVEALED or CLOSED")
	ErrGracePeriodNotPassed  = errors.New("grace period has not passed")
	ErrRoomFull              = errors.New("room is at ticket capacity")
	ErrPaused                = errors.New("operations are paused")
)

// SettlementConfig carries the tunables of the settlement core.
type SettlementConfig struct {
	FeeRateBps  int64
	RevealGrace time.Duration // after drawTime, before an unrevealed round may be force-closed
	ClaimGrace  time.Duration // after revealTime, before a revealed round may be force-closed
	MaxTickets  int64         // per room per round, 0 = unlimited
}

// SettlementServiceImpl orchestrates the room/round state machine, the
// ticket ledger, player statistics and the boundary fund transfers.
//
// Mutating operations are serialized by mu: each one runs to completion
// before the next begins, so internal effects and their compensation on
// boundary failure are never observed partially. Internal state changes
// always complete before the ledger is called (checks, effects, then
// interactions).
type SettlementServiceImpl struct {
	mu sync.Mutex

	roomRepo   repositories.RoomRepository
	ticketRepo repositories.TicketRepository
	claimRepo  repositories.ClaimRepository
	statsRepo  repositories.PlayerStatsRepository
	feeRepo    repositories.FeeRepository
	statusRepo repositories.SystemStatusRepository
	userRepo   repositories.UserRepository

	ledger tokenledger.Ledger
	calc   *fees.Calculator

	revealGrace time.Duration
	claimGrace  time.Duration
	maxTickets  int64

	now func() time.Time
}

// NewSettlementService creates a new SettlementServiceImpl
func NewSettlementService(
	roomRepo repositories.RoomRepository,
	ticketRepo repositories.TicketRepository,
	claimRepo repositories.ClaimRepository,
	statsRepo repositories.PlayerStatsRepository,
	feeRepo repositories.FeeRepository,
	statusRepo repositories.SystemStatusRepository,
	userRepo repositories.UserRepository,
	ledger tokenledger.Ledger,
	cfg SettlementConfig,
) (*SettlementServiceImpl, error) {
	calc, err := fees.NewCalculator(cfg.FeeRateBps)
	if err != nil {
		return nil, fmt.Errorf("fee rate: %w", err)
	}
	return &SettlementServiceImpl{
		roomRepo:    roomRepo,
		ticketRepo:  ticketRepo,
		claimRepo:   claimRepo,
		statsRepo:   statsRepo,
		feeRepo:     feeRepo,
		statusRepo:  statusRepo,
		userRepo:    userRepo,
		ledger:      ledger,
		calc:        calc,
		revealGrace: cfg.RevealGrace,
		claimGrace:  cfg.ClaimGrace,
		maxTickets:  cfg.MaxTickets,
		now:         time.Now,
	}, nil
}

// WithClock overrides the time source. Tests use this to drive the lazy
// time-based transitions deterministically.
func (s *SettlementServiceImpl) WithClock(now func() time.Time) {
	s.now = now
}

// requireUnpaused rejects mutating operations while the global pause is set
func (s *SettlementServiceImpl) requireUnpaused(ctx context.Context) error {
	status, err := s.statusRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("load system status: %w", err)
	}
	if status.Paused {
		return ErrPaused
	}
	return nil
}

// CreateRoom creates a room owned by the operator, opening round 1.
func (s *SettlementServiceImpl) CreateRoom(ctx context.Context, operatorID primitive.ObjectID, params CreateRoomParams) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUnpaused(ctx); err != nil {
		return nil, err
	}
	if params.EntryFee <= 0 {
		return nil, ErrInvalidAmount
	}
	if !params.DrawTime.After(s.now()) {
		return nil, fmt.Errorf("%w: draw time must be in the future", ErrInvalidState)
	}
	if !commitment.IsWellFormed(params.Commitment) {
		return nil, fmt.Errorf("%w: malformed commitment", ErrInvalidVerification)
	}

	if !params.RoomID.IsZero() {
		if _, err := s.roomRepo.FindByID(ctx, params.RoomID); err == nil {
			return nil, fmt.Errorf("%w: room id already taken", ErrInvalidState)
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("check room id: %w", err)
		}
	}

	room := &models.Room{
		ID:          params.RoomID,
		Name:        params.Name,
		Description: params.Description,
		OperatorID:  operatorID,
		EntryFee:    params.EntryFee,
		DrawTime:    params.DrawTime,
		Commitment:  params.Commitment,
		State:       models.RoomStateOpen,
		RoundNumber: 1,
	}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	slog.Info("room created", "roomId", room.ID.Hex(), "operatorId", operatorID.Hex(), "entryFee", room.EntryFee, "drawTime", room.DrawTime)
	return room, nil
}

// BuyTicket sells the player a ticket on the chosen number. The ticket,
// pool balance and player counters are written first; the entry fee pull
// is the final step, and its failure unwinds the internal effects before
// the operation lock is released.
func (s *SettlementServiceImpl) BuyTicket(ctx context.Context, playerID, roomID primitive.ObjectID, number int) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUnpaused(ctx); err != nil {
		return nil, err
	}
	if number < models.MinLotteryNumber || number > models.MaxLotteryNumber {
		return nil, ErrInvalidNumber
	}

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, s.roomErr(err)
	}

	// The stored state may be stale; reject against the draw time itself,
	// recomputed on every purchase attempt.
	now := s.now()
	if room.State != models.RoomStateOpen || !now.Before(room.DrawTime) {
		return nil, ErrInvalidState
	}
	if s.maxTickets > 0 && room.TicketCount >= s.maxTickets {
		return nil, ErrRoomFull
	}

	player, err := s.userRepo.FindByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("load player: %w", err)
	}

	ticket := &models.Ticket{
		RoomID:      roomID,
		RoundNumber: room.RoundNumber,
		Index:       room.TicketCount,
		OwnerID:     playerID,
		Number:      number,
		PurchasedAt: now,
	}
	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("append ticket: %w", err)
	}

	room.Pool += room.EntryFee
	room.TicketCount++
	if err := s.roomRepo.Update(ctx, room); err != nil {
		s.ticketRepo.Delete(ctx, ticket.ID)
		return nil, fmt.Errorf("update room: %w", err)
	}
	if err := s.statsRepo.IncrementTickets(ctx, playerID, roomID, 1); err != nil {
		slog.Error("failed to increment ticket stats", "error", err, "playerId", playerID.Hex())
	}

	// Boundary interaction last: pull the pre-authorized entry fee.
	if err := s.ledger.Pull(ctx, player.LedgerAccount, room.EntryFee); err != nil {
		s.compensatePurchase(ctx, room, ticket, playerID)
		if errors.Is(err, tokenledger.ErrInsufficientAllowance) {
			return nil, ErrInsufficientAllowance
		}
		slog.Error("entry fee pull failed", "error", err, "roomId", roomID.Hex(), "playerId", playerID.Hex())
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	slog.Info("ticket purchased", "roomId", roomID.Hex(), "round", room.RoundNumber, "index", ticket.Index, "number", number, "playerId", playerID.Hex())
	return ticket, nil
}

// compensatePurchase unwinds the internal effects of a purchase whose fee
// pull failed. Runs with the operation lock held, so the intermediate
// state is never visible to other operations.
func (s *SettlementServiceImpl) compensatePurchase(ctx context.Context, room *models.Room, ticket *models.Ticket, playerID primitive.ObjectID) {
	if err := s.ticketRepo.Delete(ctx, ticket.ID); err != nil {
		slog.Error("compensation: failed to remove ticket", "error", err, "ticketId", ticket.ID.Hex())
	}
	room.Pool -= room.EntryFee
	room.TicketCount--
	if err := s.roomRepo.Update(ctx, room); err != nil {
		slog.Error("compensation: failed to restore room", "error", err, "roomId", room.ID.Hex())
	}
	if err := s.statsRepo.IncrementTickets(ctx, playerID, room.ID, -1); err != nil {
		slog.Error("compensation: failed to restore ticket stats", "error", err, "playerId", playerID.Hex())
	}
}

// RevealWinningNumber checks the operator's commitment against the
// revealed number and secret, then flags every matching ticket of the
// round as a winner in a single pass.
func (s *SettlementServiceImpl) RevealWinningNumber(ctx context.Context, operatorID, roomID primitive.ObjectID, number int, secret string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUnpaused(ctx); err != nil {
		return nil, err
	}

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, s.roomErr(err)
	}
	if room.OperatorID != operatorID {
		return nil, ErrInvalidOwner
	}

	// A room that has revealed rejects a second reveal unconditionally,
	// before the verifier sees the arguments.
	if room.Revealed {
		return nil, ErrAlreadyRevealed
	}

	now := s.now()
	if room.EffectiveState(now) != models.RoomStatePendingReveal {
		return nil, ErrInvalidState
	}
	if number < models.MinLotteryNumber || number > models.MaxLotteryNumber {
		return nil, ErrInvalidNumber
	}
	if !commitment.Verify(room.Commitment, number, secret, roomID.Hex(), operatorID.Hex(), room.RoundNumber) {
		slog.Warn("commitment mismatch on reveal", "roomId", roomID.Hex(), "round", room.RoundNumber)
		return nil, ErrInvalidVerification
	}

	room.Revealed = true
	room.WinningNumber = number
	room.RevealTime = now
	room.State = models.RoomStateRevealed
	if err := s.roomRepo.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("update room: %w", err)
	}

	flagged, err := s.ticketRepo.MarkWinners(ctx, roomID, room.RoundNumber, number)
	if err != nil {
		return nil, fmt.Errorf("mark winners: %w", err)
	}
	if flagged > 0 {
		winners, err := s.ticketRepo.FindByRoomAndRound(ctx, roomID, room.RoundNumber)
		if err != nil {
			return nil, fmt.Errorf("list round tickets: %w", err)
		}
		for _, t := range winners {
			if !t.Win {
				continue
			}
			if err := s.statsRepo.IncrementWins(ctx, t.OwnerID, roomID, 1); err != nil {
				slog.Error("failed to increment win stats", "error", err, "playerId", t.OwnerID.Hex())
			}
		}
	}

	slog.Info("winning number revealed", "roomId", roomID.Hex(), "round", room.RoundNumber, "number", number, "winners", flagged, "pool", room.Pool)
	return room, nil
}

// ClaimPrize pays out one winning, unclaimed ticket owned by the caller.
// The claim record is written and the pool debited before the payout push;
// a re-entrant claim therefore fails the already-claimed check instead of
// double-paying. The platform fee is booked exactly once per round, at the
// first claim, and the per-winner payout is fixed at that moment.
func (s *SettlementServiceImpl) ClaimPrize(ctx context.Context, playerID, roomID primitive.ObjectID, ticketIndex int64) (*models.ClaimRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUnpaused(ctx); err != nil {
		return nil, err
	}

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, s.roomErr(err)
	}
	if room.State != models.RoomStateRevealed {
		return nil, ErrInvalidState
	}

	ticket, err := s.ticketRepo.FindByRoomRoundAndIndex(ctx, roomID, room.RoundNumber, ticketIndex)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidTicket
		}
		return nil, fmt.Errorf("load ticket: %w", err)
	}
	if ticket.OwnerID != playerID {
		return nil, ErrInvalidOwner
	}
	if !ticket.Win {
		return nil, ErrInvalidTicket
	}
	if _, err := s.claimRepo.Find(ctx, roomID, room.RoundNumber, ticketIndex); err == nil {
		return nil, ErrInvalidTicket
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("load claim record: %w", err)
	}

	// The winning count reflects exactly the tickets flagged at reveal;
	// recomputed here rather than cached.
	winnerCount, err := s.ticketRepo.CountWinners(ctx, roomID, room.RoundNumber)
	if err != nil {
		return nil, fmt.Errorf("count winners: %w", err)
	}
	if winnerCount == 0 {
		return nil, ErrInvalidTicket
	}

	feeBooked := int64(0)
	if !room.FeesCollected {
		fee, perWin := s.calc.Split(room.Pool, winnerCount)
		if err := s.feeRepo.AddCollected(ctx, fee); err != nil {
			return nil, fmt.Errorf("book platform fee: %w", err)
		}
		feeBooked = fee
		room.Pool -= fee
		room.FeesCollected = true
		room.PayoutPerWin = perWin
	}
	payout := room.PayoutPerWin

	player, err := s.userRepo.FindByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("load player: %w", err)
	}

	claim := &models.ClaimRecord{
		RoomID:      roomID,
		RoundNumber: room.RoundNumber,
		TicketIndex: ticketIndex,
		OwnerID:     playerID,
		Amount:      payout,
		ClaimedAt:   s.now(),
	}
	if err := s.claimRepo.Create(ctx, claim); err != nil {
		return nil, fmt.Errorf("record claim: %w", err)
	}

	room.Pool -= payout
	claimed, err := s.claimRepo.CountByRoomAndRound(ctx, roomID, room.RoundNumber)
	if err != nil {
		return nil, fmt.Errorf("count claims: %w", err)
	}
	autoClosed := claimed >= winnerCount
	if autoClosed {
		room.State = models.RoomStateClosed
	}
	if err := s.roomRepo.Update(ctx, room); err != nil {
		s.claimRepo.Delete(ctx, roomID, room.RoundNumber, ticketIndex)
		return nil, fmt.Errorf("update room: %w", err)
	}
	if err := s.statsRepo.IncrementClaims(ctx, playerID, 1); err != nil {
		slog.Error("failed to increment claim stats", "error", err, "playerId", playerID.Hex())
	}

	// Boundary interaction last: push the payout. All guards are already
	// set, so a repeat attempt triggered from the transfer fails cleanly.
	if err := s.ledger.Push(ctx, player.LedgerAccount, payout); err != nil {
		s.compensateClaim(ctx, room, claim, payout, autoClosed, playerID)
		slog.Error("payout push failed", "error", err, "roomId", roomID.Hex(), "ticketIndex", ticketIndex)
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	slog.Info("prize claimed", "roomId", roomID.Hex(), "round", room.RoundNumber, "ticketIndex", ticketIndex, "payout", payout, "feeBooked", feeBooked, "closed", autoClosed)
	return claim, nil
}

// compensateClaim unwinds a claim whose payout push failed. The one-time
// fee booking is deliberately left in place: it completed before the
// transfer and its guard must not flap.
func (s *SettlementServiceImpl) compensateClaim(ctx context.Context, room *models.Room, claim *models.ClaimRecord, payout int64, autoClosed bool, playerID primitive.ObjectID) {
	if err := s.claimRepo.Delete(ctx, claim.RoomID, claim.RoundNumber, claim.TicketIndex); err != nil {
		slog.Error("compensation: failed to remove claim record", "error", err, "roomId", claim.RoomID.Hex())
	}
	room.Pool += payout
	if autoClosed {
		room.State = models.RoomStateRevealed
	}
	if err := s.roomRepo.Update(ctx, room); err != nil {
		slog.Error("compensation: failed to restore room", "error", err, "roomId", room.ID.Hex())
	}
	if err := s.statsRepo.IncrementClaims(ctx, playerID, -1); err != nil {
		slog.Error("compensation: failed to restore claim stats", "error", err, "playerId", playerID.Hex())
	}
}

// ResetRoom opens the next round. Whatever remains in the pool carries
// over, whether it is an unwon pool, frozen unclaimed payouts, or dust.
func (s *SettlementServiceImpl) ResetRoom(ctx context.Context, operatorID, roomID primitive.ObjectID, drawTime time.Time, newCommitment string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUnpaused(ctx); err != nil {
		return nil, err
	}

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, s.roomErr(err)
	}
	if room.OperatorID != operatorID {
		return nil, ErrInvalidOwner
	}
	state := room.EffectiveState(s.now())
	if state != models.RoomStateRevealed && state != models.RoomStateClosed {
		return nil, ErrRoomNotResettable
	}
	if !drawTime.After(s.now()) {
		return nil, fmt.Errorf("%w: draw time must be in the future", ErrInvalidState)
	}
	if !commitment.IsWellFormed(newCommitment) {
		return nil, fmt.Errorf("%w: malformed commitment", ErrInvalidVerification)
	}

	carried := room.Pool
	room.RoundNumber++
	room.State = models.RoomStateOpen
	room.DrawTime = drawTime
	room.Commitment = newCommitment
	room.Revealed = false
	room.WinningNumber = 0
	room.RevealTime = time.Time{}
	room.FeesCollected = false
	room.PayoutPerWin = 0
	room.TicketCount = 0
	if err := s.roomRepo.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("update room: %w", err)
	}

	slog.Info("room reset", "roomId", roomID.Hex(), "round", room.RoundNumber, "carriedPool", carried, "drawTime", drawTime)
	return room, nil
}

// ForceCloseRoom closes an overdue round: an unrevealed one once the
// reveal grace period past the draw time has elapsed, or a revealed one
// once the claim grace period past the reveal time has elapsed. Unclaimed
// payouts stay in the pool and carry over on reset.
func (s *SettlementServiceImpl) ForceCloseRoom(ctx context.Context, operatorID, roomID primitive.ObjectID) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, s.roomErr(err)
	}
	if room.OperatorID != operatorID {
		return nil, ErrInvalidOwner
	}

	now := s.now()
	switch room.EffectiveState(now) {
	case models.RoomStatePendingReveal:
		if now.Before(room.DrawTime.Add(s.revealGrace)) {
			return nil, ErrGracePeriodNotPassed
		}
	case models.RoomStateRevealed:
		if now.Before(room.RevealTime.Add(s.claimGrace)) {
			return nil, ErrGracePeriodNotPassed
		}
	default:
		return nil, ErrInvalidState
	}

	room.State = models.RoomStateClosed
	if err := s.roomRepo.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("update room: %w", err)
	}

	slog.Info("room force-closed", "roomId", roomID.Hex(), "round", room.RoundNumber, "pool", room.Pool)
	return room, nil
}

// EmergencyPause rejects further mutating operations until resumed.
func (s *SettlementServiceImpl) EmergencyPause(ctx context.Context, operatorID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.statusRepo.SetPaused(ctx, true); err != nil {
		return fmt.Errorf("set pause: %w", err)
	}
	slog.Warn("operations paused", "operatorId", operatorID.Hex())
	return nil
}

// ResumeOperations lifts the global pause.
func (s *SettlementServiceImpl) ResumeOperations(ctx context.Context, operatorID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.statusRepo.SetPaused(ctx, false); err != nil {
		return fmt.Errorf("clear pause: %w", err)
	}
	slog.Info("operations resumed", "operatorId", operatorID.Hex())
	return nil
}

// WithdrawFees pays collected platform fees to the configured recipient,
// or to the operator's own ledger account when none is configured. A zero
// amount withdraws everything tracked. Returns the amount withdrawn.
func (s *SettlementServiceImpl) WithdrawFees(ctx context.Context, operatorID primitive.ObjectID, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.feeRepo.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("load fee account: %w", err)
	}
	available := account.Available()
	if amount == 0 {
		amount = available
	}
	if amount <= 0 || amount > available {
		return 0, ErrInvalidAmount
	}

	recipient := account.Recipient
	if recipient == "" {
		operator, err := s.userRepo.FindByID(ctx, operatorID)
		if err != nil {
			return 0, fmt.Errorf("load operator: %w", err)
		}
		recipient = operator.LedgerAccount
	}

	if err := s.feeRepo.AddWithdrawn(ctx, amount); err != nil {
		return 0, fmt.Errorf("record withdrawal: %w", err)
	}
	if err := s.ledger.Push(ctx, recipient, amount); err != nil {
		if rerr := s.feeRepo.AddWithdrawn(ctx, -amount); rerr != nil {
			slog.Error("compensation: failed to restore fee account", "error", rerr)
		}
		slog.Error("fee withdrawal push failed", "error", err, "amount", amount)
		return 0, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	slog.Info("fees withdrawn", "amount", amount, "recipient", recipient, "operatorId", operatorID.Hex())
	return amount, nil
}

// SetFeeRecipient changes the ledger account fees are withdrawn to.
func (s *SettlementServiceImpl) SetFeeRecipient(ctx context.Context, operatorID primitive.ObjectID, recipient string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if recipient == "" {
		return ErrInvalidAddress
	}
	if err := s.feeRepo.SetRecipient(ctx, recipient); err != nil {
		return fmt.Errorf("set fee recipient: %w", err)
	}
	slog.Info("fee recipient updated", "recipient", recipient, "operatorId", operatorID.Hex())
	return nil
}

// --- Read-only queries ---

// GetRoom returns a room with its state recomputed against now, so
// listings never show a stale OPEN for a round whose draw time passed.
func (s *SettlementServiceImpl) GetRoom(ctx context.Context, roomID primitive.ObjectID) (*models.Room, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, s.roomErr(err)
	}
	room.State = room.EffectiveState(s.now())
	return room, nil
}

// ListRooms returns all rooms with recomputed states.
func (s *SettlementServiceImpl) ListRooms(ctx context.Context) ([]*models.Room, error) {
	rooms, err := s.roomRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	now := s.now()
	for _, room := range rooms {
		room.State = room.EffectiveState(now)
	}
	return rooms, nil
}

// GetRoundTickets lists the tickets of a round; round 0 means the current round.
func (s *SettlementServiceImpl) GetRoundTickets(ctx context.Context, roomID primitive.ObjectID, round int64) ([]*models.Ticket, error) {
	if round == 0 {
		room, err := s.roomRepo.FindByID(ctx, roomID)
		if err != nil {
			return nil, s.roomErr(err)
		}
		round = room.RoundNumber
	}
	return s.ticketRepo.FindByRoomAndRound(ctx, roomID, round)
}

// GetPlayerTickets lists a player's tickets in a room's current round.
func (s *SettlementServiceImpl) GetPlayerTickets(ctx context.Context, roomID, playerID primitive.ObjectID) ([]*models.Ticket, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, s.roomErr(err)
	}
	return s.ticketRepo.FindByOwner(ctx, roomID, room.RoundNumber, playerID)
}

// GetClaimStatus reports whether a ticket's payout has been issued.
func (s *SettlementServiceImpl) GetClaimStatus(ctx context.Context, roomID primitive.ObjectID, round, ticketIndex int64) (*models.ClaimRecord, bool, error) {
	claim, err := s.claimRepo.Find(ctx, roomID, round, ticketIndex)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load claim record: %w", err)
	}
	return claim, true, nil
}

// GetPlayerStats returns a participant's derived counters.
func (s *SettlementServiceImpl) GetPlayerStats(ctx context.Context, playerID primitive.ObjectID) (*models.PlayerStats, error) {
	return s.statsRepo.FindByPlayer(ctx, playerID)
}

// GetFeeAccount returns the aggregate platform fee account.
func (s *SettlementServiceImpl) GetFeeAccount(ctx context.Context) (*models.FeeAccount, error) {
	return s.feeRepo.Get(ctx)
}

// IsPaused reports the global pause flag.
func (s *SettlementServiceImpl) IsPaused(ctx context.Context) (bool, error) {
	status, err := s.statusRepo.Get(ctx)
	if err != nil {
		return false, err
	}
	return status.Paused, nil
}

func (s *SettlementServiceImpl) roomErr(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrInvalidRoom
	}
	return fmt.Errorf("load room: %w", err)
}
