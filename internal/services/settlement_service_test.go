package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lottoroom/lottoroom-backend/internal/commitment"
	"github.com/lottoroom/lottoroom-backend/internal/models"
	"github.com/lottoroom/lottoroom-backend/internal/repositories/memory"
	"github.com/lottoroom/lottoroom-backend/pkg/tokenledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc    *SettlementServiceImpl
	ledger *tokenledger.MemoryLedger
	users  *memory.UserRepository
	fees   *memory.FeeRepository
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithLedger(t, tokenledger.NewMemoryLedger())
}

func newFixtureWithLedger(t *testing.T, ledger tokenledger.Ledger) *fixture {
	t.Helper()
	fx := &fixture{
		users: memory.NewUserRepository(),
		fees:  memory.NewFeeRepository(),
		now:   testBase,
	}
	if ml, ok := ledger.(*tokenledger.MemoryLedger); ok {
		fx.ledger = ml
	}
	svc, err := NewSettlementService(
		memory.NewRoomRepository(),
		memory.NewTicketRepository(),
		memory.NewClaimRepository(),
		memory.NewPlayerStatsRepository(),
		fx.fees,
		memory.NewSystemStatusRepository(),
		fx.users,
		ledger,
		SettlementConfig{
			FeeRateBps:  1000,
			RevealGrace: 24 * time.Hour,
			ClaimGrace:  72 * time.Hour,
			MaxTickets:  0,
		},
	)
	require.NoError(t, err)
	svc.WithClock(func() time.Time { return fx.now })
	fx.svc = svc
	return fx
}

func (fx *fixture) advance(d time.Duration) {
	fx.now = fx.now.Add(d)
}

// newUser registers an account with a funded, pre-authorized ledger account.
func (fx *fixture) newUser(t *testing.T, role string, funds int64) *models.User {
	t.Helper()
	u := &models.User{
		Email:         fmt.Sprintf("u%d@example.com", time.Now().UnixNano()),
		Role:          role,
		LedgerAccount: primitive.NewObjectID().Hex(),
	}
	require.NoError(t, fx.users.Create(context.Background(), u))
	if fx.ledger != nil && funds > 0 {
		fx.ledger.Credit(u.LedgerAccount, funds)
		fx.ledger.Approve(u.LedgerAccount, funds)
	}
	return u
}

type roomSetup struct {
	room     *models.Room
	operator *models.User
	number   int
	secret   string
}

// newRoom creates a room committed to the given winning number, drawing
// one hour from the fixture clock.
func (fx *fixture) newRoom(t *testing.T, entryFee int64, number int) *roomSetup {
	t.Helper()
	op := fx.newUser(t, models.RoleOperator, 0)
	roomID := primitive.NewObjectID()
	secret, err := commitment.GenerateSecret()
	require.NoError(t, err)
	c := commitment.Compute(number, secret, roomID.Hex(), op.ID.Hex(), 1)
	room, err := fx.svc.CreateRoom(context.Background(), op.ID, CreateRoomParams{
		RoomID:     roomID,
		Name:       "test room",
		EntryFee:   entryFee,
		DrawTime:   fx.now.Add(time.Hour),
		Commitment: c,
	})
	require.NoError(t, err)
	require.Equal(t, roomID, room.ID)
	return &roomSetup{room: room, operator: op, number: number, secret: secret}
}

func (fx *fixture) reveal(t *testing.T, rs *roomSetup) *models.Room {
	t.Helper()
	room, err := fx.svc.RevealWinningNumber(context.Background(), rs.operator.ID, rs.room.ID, rs.number, rs.secret)
	require.NoError(t, err)
	return room
}

func TestCreateRoom(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	op := fx.newUser(t, models.RoleOperator, 0)

	t.Run("opens round one", func(t *testing.T) {
		secret, _ := commitment.GenerateSecret()
		roomID := primitive.NewObjectID()
		room, err := fx.svc.CreateRoom(ctx, op.ID, CreateRoomParams{
			RoomID:     roomID,
			Name:       "daily",
			EntryFee:   10,
			DrawTime:   fx.now.Add(time.Hour),
			Commitment: commitment.Compute(7, secret, roomID.Hex(), op.ID.Hex(), 1),
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoomStateOpen, room.State)
		assert.Equal(t, int64(1), room.RoundNumber)
		assert.Equal(t, int64(0), room.Pool)
		assert.Equal(t, op.ID, room.OperatorID)
	})

	t.Run("rejects non-positive entry fee", func(t *testing.T) {
		secret, _ := commitment.GenerateSecret()
		_, err := fx.svc.CreateRoom(ctx, op.ID, CreateRoomParams{
			EntryFee:   0,
			DrawTime:   fx.now.Add(time.Hour),
			Commitment: commitment.Compute(7, secret, "x", op.ID.Hex(), 1),
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("rejects draw time in the past", func(t *testing.T) {
		secret, _ := commitment.GenerateSecret()
		_, err := fx.svc.CreateRoom(ctx, op.ID, CreateRoomParams{
			EntryFee:   10,
			DrawTime:   fx.now.Add(-time.Minute),
			Commitment: commitment.Compute(7, secret, "x", op.ID.Hex(), 1),
		})
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("rejects malformed commitment", func(t *testing.T) {
		_, err := fx.svc.CreateRoom(ctx, op.ID, CreateRoomParams{
			EntryFee:   10,
			DrawTime:   fx.now.Add(time.Hour),
			Commitment: "nothex",
		})
		assert.ErrorIs(t, err, ErrInvalidVerification)
	})
}

func TestBuyTicket(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	rs := fx.newRoom(t, 10, 42)

	t.Run("accepts purchase while open", func(t *testing.T) {
		p := fx.newUser(t, models.RolePlayer, 100)
		ticket, err := fx.svc.BuyTicket(ctx, p.ID, rs.room.ID, 42)
		require.NoError(t, err)
		assert.Equal(t, int64(0), ticket.Index)
		assert.Equal(t, 42, ticket.Number)

		room, err := fx.svc.GetRoom(ctx, rs.room.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(10), room.Pool)
		assert.Equal(t, int64(1), room.TicketCount)
		assert.Equal(t, int64(90), fx.ledger.Balance(p.LedgerAccount))
		assert.Equal(t, int64(10), fx.ledger.PoolBalance())
	})

	t.Run("indexes are dense per round", func(t *testing.T) {
		p := fx.newUser(t, models.RolePlayer, 100)
		t1, err := fx.svc.BuyTicket(ctx, p.ID, rs.room.ID, 1)
		require.NoError(t, err)
		t2, err := fx.svc.BuyTicket(ctx, p.ID, rs.room.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, t1.Index+1, t2.Index)
	})

	t.Run("rejects numbers outside range", func(t *testing.T) {
		p := fx.newUser(t, models.RolePlayer, 100)
		_, err := fx.svc.BuyTicket(ctx, p.ID, rs.room.ID, -1)
		assert.ErrorIs(t, err, ErrInvalidNumber)
		_, err = fx.svc.BuyTicket(ctx, p.ID, rs.room.ID, 100)
		assert.ErrorIs(t, err, ErrInvalidNumber)
		_, err = fx.svc.BuyTicket(ctx, p.ID, rs.room.ID, 0)
		assert.NoError(t, err)
		_, err = fx.svc.BuyTicket(ctx, p.ID, rs.room.ID, 99)
		assert.NoError(t, err)
	})

	t.Run("rejects unknown room", func(t *testing.T) {
		p := fx.newUser(t, models.RolePlayer, 100)
		_, err := fx.svc.BuyTicket(ctx, p.ID, primitive.NewObjectID(), 5)
		assert.ErrorIs(t, err, ErrInvalidRoom)
	})

	t.Run("unwinds when the fee pull is unauthorized", func(t *testing.T) {
		p := fx.newUser(t, models.RolePlayer, 0) // no funds, no allowance
		before, err := fx.svc.GetRoom(ctx, rs.room.ID)
		require.NoError(t, err)

		_, err = fx.svc.BuyTicket(ctx, p.ID, rs.room.ID, 5)
		assert.ErrorIs(t, err, ErrInsufficientAllowance)

		after, err := fx.svc.GetRoom(ctx, rs.room.ID)
		require.NoError(t, err)
		assert.Equal(t, before.Pool, after.Pool)
		assert.Equal(t, before.TicketCount, after.TicketCount)
		tickets, err := fx.svc.GetRoundTickets(ctx, rs.room.ID, 0)
		require.NoError(t, err)
		assert.Len(t, tickets, int(after.TicketCount))
	})

	t.Run("rejects purchase at or after draw time even with stale state", func(t *testing.T) {
		p := fx.newUser(t, models.RolePlayer, 100)
		fx.advance(time.Hour) // exactly drawTime; stored state is still OPEN
		_, err := fx.svc.BuyTicket(ctx, p.ID, rs.room.ID, 5)
		assert.ErrorIs(t, err, ErrInvalidState)

		room, err := fx.svc.GetRoom(ctx, rs.room.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoomStatePendingReveal, room.State)
	})
}

func TestBuyTicketRoomCapacity(t *testing.T) {
	fx := newFixture(t)
	fx.svc.maxTickets = 2
	ctx := context.Background()
	rs := fx.newRoom(t, 10, 42)
	p := fx.newUser(t, models.RolePlayer, 100)

	_, err := fx.svc.BuyTicket(ctx, p.ID, rs.room.ID, 1)
	require.NoError(t, err)
	_, err = fx.svc.BuyTicket(ctx, p.ID, rs.room.ID, 2)
	require.NoError(t, err)
	_, err = fx.svc.BuyTicket(ctx, p.ID, rs.room.ID, 3)
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestRevealWinningNumber(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects reveal before draw time", func(t *testing.T) {
		fx := newFixture(t)
		rs := fx.newRoom(t, 10, 42)
		_, err := fx.svc.RevealWinningNumber(ctx, rs.operator.ID, rs.room.ID, rs.number, rs.secret)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("accepts the committed number and flags winners", func(t *testing.T) {
		fx := newFixture(t)
		rs := fx.newRoom(t, 10, 42)
		winner := fx.newUser(t, models.RolePlayer, 100)
		loser := fx.newUser(t, models.RolePlayer, 100)
		_, err := fx.svc.BuyTicket(ctx, winner.ID, rs.room.ID, 42)
		require.NoError(t, err)
		_, err = fx.svc.BuyTicket(ctx, loser.ID, rs.room.ID, 7)
		require.NoError(t, err)

		fx.advance(2 * time.Hour)
		room := fx.reveal(t, rs)
		assert.Equal(t, models.RoomStateRevealed, room.State)
		assert.True(t, room.Revealed)
		assert.Equal(t, 42, room.WinningNumber)
		assert.Equal(t, fx.now, room.RevealTime)

		tickets, err := fx.svc.GetRoundTickets(ctx, rs.room.ID, 0)
		require.NoError(t, err)
		wins := 0
		for _, tk := range tickets {
			if tk.Win {
				wins++
				assert.Equal(t, winner.ID, tk.OwnerID)
			}
		}
		assert.Equal(t, 1, wins)

		stats, err := fx.svc.GetPlayerStats(ctx, winner.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.TotalWins)
	})

	t.Run("rejects a mismatched secret", func(t *testing.T) {
		fx := newFixture(t)
		rs := fx.newRoom(t, 10, 42)
		fx.advance(2 * time.Hour)
		_, err := fx.svc.RevealWinningNumber(ctx, rs.operator.ID, rs.room.ID, rs.number, "wrong-secret")
		assert.ErrorIs(t, err, ErrInvalidVerification)

		room, err := fx.svc.GetRoom(ctx, rs.room.ID)
		require.NoError(t, err)
		assert.False(t, room.Revealed)
	})

	t.Run("rejects a different number under the same secret", func(t *testing.T) {
		fx := newFixture(t)
		rs := fx.newRoom(t, 10, 42)
		fx.advance(2 * time.Hour)
		_, err := fx.svc.RevealWinningNumber(ctx, rs.operator.ID, rs.room.ID, 43, rs.secret)
		assert.ErrorIs(t, err, ErrInvalidVerification)
	})

	t.Run("rejects callers other than the room operator", func(t *testing.T) {
		fx := newFixture(t)
		rs := fx.newRoom(t, 10, 42)
		intruder := fx.newUser(t, models.RoleOperator, 0)
		fx.advance(2 * time.Hour)
		_, err := fx.svc.RevealWinningNumber(ctx, intruder.ID, rs.room.ID, rs.number, rs.secret)
		assert.ErrorIs(t, err, ErrInvalidOwner)
	})

	t.Run("rejects a second reveal unconditionally", func(t *testing.T) {
		fx := newFixture(t)
		rs := fx.newRoom(t, 10, 42)
		fx.advance(2 * time.Hour)
		fx.reveal(t, rs)

		// Even the correct preimage is refused once revealed.
		_, err := fx.svc.RevealWinningNumber(ctx, rs.operator.ID, rs.room.ID, rs.number, rs.secret)
		assert.ErrorIs(t, err, ErrAlreadyRevealed)
	})
}

func TestClaimPrize(t *testing.T) {
	ctx := context.Background()

	// Four tickets at fee 10: pool 40, platform fee 4, single winner nets 36.
	t.Run("single winner takes the pool minus the platform fee", func(t *testing.T) {
		fx := newFixture(t)
		rs := fx.newRoom(t, 10, 42)
		winner := fx.newUser(t, models.RolePlayer, 100)
		loser := fx.newUser(t, models.RolePlayer, 100)
		winningTicket, err := fx.svc.BuyTicket(ctx, winner.ID, rs.room.ID, 42)
		require.NoError(t, err)
		for _, n := range []int{7, 8, 9} {
			_, err := fx.svc.BuyTicket(ctx, loser.ID, rs.room.ID, n)
			require.NoError(t, err)
		}

		fx.advance(2 * time.Hour)
		fx.reveal(t, rs)

		claim, err := fx.svc.ClaimPrize(ctx, winner.ID, rs.room.ID, winningTicket.Index)
		require.NoError(t, err)
		assert.Equal(t, int64(36), claim.Amount)
		assert.Equal(t, int64(136), fx.ledger.Balance(winner.LedgerAccount))

		room, err := fx.svc.GetRoom(ctx, rs.room.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), room.Pool)
		assert.Equal(t, models.RoomStateClosed, room.State)

		fees, err := fx.svc.GetFeeAccount(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), fees.Collected)
	})

	// Ten tickets at fee 10: pool 100, fee 10, two winners net 45 each.
	t.Run("payout splits evenly and the fee books once", func(t *testing.T) {
		fx := newFixture(t)
		rs := fx.newRoom(t, 10, 5)
		a := fx.newUser(t, models.RolePlayer, 100)
		b := fx.newUser(t, models.RolePlayer, 100)
		ta, err := fx.svc.BuyTicket(ctx, a.ID, rs.room.ID, 5)
		require.NoError(t, err)
		tb, err := fx.svc.BuyTicket(ctx, b.ID, rs.room.ID, 5)
		require.NoError(t, err)
		filler := fx.newUser(t, models.RolePlayer, 100)
		for i := 0; i < 8; i++ {
			_, err := fx.svc.BuyTicket(ctx, filler.ID, rs.room.ID, (i+10)%100)
			require.NoError(t, err)
		}

		fx.advance(2 * time.Hour)
		fx.reveal(t, rs)

		c1, err := fx.svc.ClaimPrize(ctx, a.ID, rs.room.ID, ta.Index)
		require.NoError(t, err)
		assert.Equal(t, int64(45), c1.Amount)

		room, err := fx.svc.GetRoom(ctx, rs.room.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoomStateRevealed, room.State) // one winner outstanding
		assert.Equal(t, int64(45), room.Pool)

		c2, err := fx.svc.ClaimPrize(ctx, b.ID, rs.room.ID, tb.Index)
		require.NoError(t, err)
		assert.Equal(t, int64(45), c2.Amount)

		room, err = fx.svc.GetRoom(ctx, rs.room.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoomStateClosed, room.State)
		assert.Equal(t, int64(0), room.Pool)

		fees, err := fx.svc.GetFeeAccount(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(10), fees.Collected) // booked once, not per claim
	})

	t.Run("division dust stays in the pool", func(t *testing.T) {
		fx := newFixture(t)
		rs := fx.newRoom(t, 7, 5)
		a := fx.newUser(t, models.RolePlayer, 100)
		b := fx.newUser(t, models.RolePlayer, 100)
		c := fx.newUser(t, models.RolePlayer, 100)
		ta, err := fx.svc.BuyTicket(ctx, a.ID, rs.room.ID, 5)
		require.NoError(t, err)
		tb, err := fx.svc.BuyTicket(ctx, b.ID, rs.room.ID, 5)
		require.NoError(t, err)
		tc, err := fx.svc.BuyTicket(ctx, c.ID, rs.room.ID, 5)
		require.NoError(t, err)

		// pool 21, fee 2, 19/3 = 6 each, dust 1
		fx.advance(2 * time.Hour)
		fx.reveal(t, rs)
		for owner, tk := range map[*models.User]*models.Ticket{a: ta, b: tb, c: tc} {
			claim, err := fx.svc.ClaimPrize(ctx, owner.ID, rs.room.ID, tk.Index)
			require.NoError(t, err)
			assert.Equal(t, int64(6), claim.Amount)
		}

		room, err := fx.svc.GetRoom(ctx, rs.room.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoomStateClosed, room.State)
		assert.Equal(t, int64(1), room.Pool)
	})

	t.Run("rejects claims that are not payable", func(t *testing.T) {
		fx := newFixture(t)
		rs := fx.newRoom(t, 10, 42)
		winner := fx.newUser(t, models.RolePlayer, 100)
		loser := fx.newUser(t, models.RolePlayer, 100)
		wt, err := fx.svc.BuyTicket(ctx, winner.ID, rs.room.ID, 42)
		require.NoError(t, err)
		lt, err := fx.svc.BuyTicket(ctx, loser.ID, rs.room.ID, 7)
		require.NoError(t, err)

		// not yet revealed
		_, err = fx.svc.ClaimPrize(ctx, winner.ID, rs.room.ID, wt.Index)
		assert.ErrorIs(t, err, ErrInvalidState)

		fx.advance(2 * time.Hour)
		fx.reveal(t, rs)

		// non-winning ticket
		_, err = fx.svc.ClaimPrize(ctx, loser.ID, rs.room.ID, lt.Index)
		assert.ErrorIs(t, err, ErrInvalidTicket)

		// someone else's ticket
		_, err = fx.svc.ClaimPrize(ctx, loser.ID, rs.room.ID, wt.Index)
		assert.ErrorIs(t, err, ErrInvalidOwner)

		// unknown index
		_, err = fx.svc.ClaimPrize(ctx, winner.ID, rs.room.ID, 99)
		assert.ErrorIs(t, err, ErrInvalidTicket)

		// double claim
		_, err = fx.svc.ClaimPrize(ctx, winner.ID, rs.room.ID, wt.Index)
		require.NoError(t, err)
		_, err = fx.svc.ClaimPrize(ctx, winner.ID, rs.room.ID, wt.Index)
		assert.ErrorIs(t, err, ErrInvalidTicket)

		balance := fx.ledger.Balance(winner.LedgerAccount)
		assert.Equal(t, int64(90+18), balance) // paid exactly once
	})

	t.Run("claim status reflects issued payouts", func(t *testing.T) {
		fx := newFixture(t)
		rs := fx.newRoom(t, 10, 42)
		winner := fx.newUser(t, models.RolePlayer, 100)
		wt, err := fx.svc.BuyTicket(ctx, winner.ID, rs.room.ID, 42)
		require.NoError(t, err)

		_, claimed, err := fx.svc.GetClaimStatus(ctx, rs.room.ID, 1, wt.Index)
		require.NoError(t, err)
		assert.False(t, claimed)

		fx.advance(2 * time.Hour)
		fx.reveal(t, rs)
		_, err = fx.svc.ClaimPrize(ctx, winner.ID, rs.room.ID, wt.Index)
		require.NoError(t, err)

		rec, claimed, err := fx.svc.GetClaimStatus(ctx, rs.room.ID, 1, wt.Index)
		require.NoError(t, err)
		assert.True(t, claimed)
		assert.Equal(t, int64(9), rec.Amount) // pool 10, fee 1

		stats, err := fx.svc.GetPlayerStats(ctx, winner.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.TotalClaims)
	})
}

// failPushLedger delegates to a MemoryLedger but refuses outbound pushes
// while broken.
type failPushLedger struct {
	*tokenledger.MemoryLedger
	broken bool
}

func (l *failPushLedger) Push(ctx context.Context, payee string, amount int64) error {
	if l.broken {
		return errors.New("ledger unavailable")
	}
	return l.MemoryLedger.Push(ctx, payee, amount)
}

func TestClaimPrizeTransferFailure(t *testing.T) {
	ctx := context.Background()
	ledger := &failPushLedger{MemoryLedger: tokenledger.NewMemoryLedger()}
	fx := newFixtureWithLedger(t, ledger)
	fx.ledger = ledger.MemoryLedger
	rs := fx.newRoom(t, 10, 42)
	winner := fx.newUser(t, models.RolePlayer, 100)
	wt, err := fx.svc.BuyTicket(ctx, winner.ID, rs.room.ID, 42)
	require.NoError(t, err)

	fx.advance(2 * time.Hour)
	fx.reveal(t, rs)

	ledger.broken = true
	_, err = fx.svc.ClaimPrize(ctx, winner.ID, rs.room.ID, wt.Index)
	assert.ErrorIs(t, err, ErrTransferFailed)

	// The claim record was compensated away; the ticket is still claimable.
	_, claimed, err := fx.svc.GetClaimStatus(ctx, rs.room.ID, 1, wt.Index)
	require.NoError(t, err)
	assert.False(t, claimed)

	ledger.broken = false
	claim, err := fx.svc.ClaimPrize(ctx, winner.ID, rs.room.ID, wt.Index)
	require.NoError(t, err)
	assert.Equal(t, int64(9), claim.Amount)
}

func TestResetRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("carries an unwon pool into the next round", func(t *testing.T) {
		fx := newFixture(t)
		rs := fx.newRoom(t, 10, 42)
		p := fx.newUser(t, models.RolePlayer, 100)
		for _, n := range []int{1, 2, 3} {
			_, err := fx.svc.BuyTicket(ctx, p.ID, rs.room.ID, n)
			require.NoError(t, err)
		}

		fx.advance(2 * time.Hour)
		fx.reveal(t, rs) // nobody picked 42

		secret, _ := commitment.GenerateSecret()
		newCommit := commitment.Compute(9, secret, rs.room.ID.Hex(), rs.operator.ID.Hex(), 2)
		room, err := fx.svc.ResetRoom(ctx, rs.operator.ID, rs.room.ID, fx.now.Add(time.Hour), newCommit)
		require.NoError(t, err)
		assert.Equal(t, int64(2), room.RoundNumber)
		assert.Equal(t, models.RoomStateOpen, room.State)
		assert.Equal(t, int64(30), room.Pool) // rollover
		assert.False(t, room.Revealed)
		assert.False(t, room.FeesCollected)
		assert.Equal(t, int64(0), room.TicketCount)
		assert.Equal(t, newCommit, room.Commitment)

		// New round starts its own dense ticket index sequence.
		tk, err := fx.svc.BuyTicket(ctx, p.ID, rs.room.ID, 9)
		require.NoError(t, err)
		assert.Equal(t, int64(0), tk.Index)
		assert.Equal(t, int64(2), tk.RoundNumber)

		// The rolled-over pool is part of the next round's prize.
		fx.advance(2 * time.Hour)
		_, err = fx.svc.RevealWinningNumber(ctx, rs.operator.ID, rs.room.ID, 9, secret)
		require.NoError(t, err)
		claim, err := fx.svc.ClaimPrize(ctx, p.ID, rs.room.ID, tk.Index)
		require.NoError(t, err)
		assert.Equal(t, int64(36), claim.Amount) // pool 40, fee 4
	})

	t.Run("only from REVEALED or CLOSED", func(t *testing.T) {
		fx := newFixture(t)
		rs := fx.newRoom(t, 10, 42)
		secret, _ := commitment.GenerateSecret()
		c := commitment.Compute(9, secret, rs.room.ID.Hex(), rs.operator.ID.Hex(), 2)

		_, err := fx.svc.ResetRoom(ctx, rs.operator.ID, rs.room.ID, fx.now.Add(time.Hour), c)
		assert.ErrorIs(t, err, ErrRoomNotResettable)

		fx.advance(2 * time.Hour) // PENDING_REVEAL
		_, err = fx.svc.ResetRoom(ctx, rs.operator.ID, rs.room.ID, fx.now.Add(time.Hour), c)
		assert.ErrorIs(t, err, ErrRoomNotResettable)
	})

	t.Run("rejects callers other than the room operator", func(t *testing.T) {
		fx := newFixture(t)
		rs := fx.newRoom(t, 10, 42)
		intruder := fx.newUser(t, models.RoleOperator, 0)
		fx.advance(2 * time.Hour)
		fx.reveal(t, rs)
		secret, _ := commitment.GenerateSecret()
		c := commitment.Compute(9, secret, rs.room.ID.Hex(), intruder.ID.Hex(), 2)
		_, err := fx.svc.ResetRoom(ctx, intruder.ID, rs.room.ID, fx.now.Add(time.Hour), c)
		assert.ErrorIs(t, err, ErrInvalidOwner)
	})
}

func TestForceCloseRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("unrevealed room closes after the reveal grace period", func(t *testing.T) {
		fx := newFixture(t)
		rs := fx.newRoom(t, 10, 42)

		fx.advance(2 * time.Hour) // past drawTime, grace running
		_, err := fx.svc.ForceCloseRoom(ctx, rs.operator.ID, rs.room.ID)
		assert.ErrorIs(t, err, ErrGracePeriodNotPassed)

		fx.advance(24 * time.Hour)
		room, err := fx.svc.ForceCloseRoom(ctx, rs.operator.ID, rs.room.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoomStateClosed, room.State)
		assert.False(t, room.Revealed)
	})

	t.Run("revealed room closes after the claim grace period", func(t *testing.T) {
		fx := newFixture(t)
		rs := fx.newRoom(t, 10, 42)
		winner := fx.newUser(t, models.RolePlayer, 100)
		_, err := fx.svc.BuyTicket(ctx, winner.ID, rs.room.ID, 42)
		require.NoError(t, err)

		fx.advance(2 * time.Hour)
		fx.reveal(t, rs)

		fx.advance(time.Hour)
		_, err = fx.svc.ForceCloseRoom(ctx, rs.operator.ID, rs.room.ID)
		assert.ErrorIs(t, err, ErrGracePeriodNotPassed)

		fx.advance(72 * time.Hour)
		room, err := fx.svc.ForceCloseRoom(ctx, rs.operator.ID, rs.room.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoomStateClosed, room.State)
		assert.Equal(t, int64(10), room.Pool) // unclaimed payout frozen in the pool
	})

	t.Run("open room cannot be forced", func(t *testing.T) {
		fx := newFixture(t)
		rs := fx.newRoom(t, 10, 42)
		_, err := fx.svc.ForceCloseRoom(ctx, rs.operator.ID, rs.room.ID)
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestEmergencyPause(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	rs := fx.newRoom(t, 10, 42)
	p := fx.newUser(t, models.RolePlayer, 100)

	require.NoError(t, fx.svc.EmergencyPause(ctx, rs.operator.ID))
	paused, err := fx.svc.IsPaused(ctx)
	require.NoError(t, err)
	assert.True(t, paused)

	_, err = fx.svc.BuyTicket(ctx, p.ID, rs.room.ID, 5)
	assert.ErrorIs(t, err, ErrPaused)
	fx.advance(2 * time.Hour)
	_, err = fx.svc.RevealWinningNumber(ctx, rs.operator.ID, rs.room.ID, rs.number, rs.secret)
	assert.ErrorIs(t, err, ErrPaused)
	secret, _ := commitment.GenerateSecret()
	c := commitment.Compute(9, secret, rs.room.ID.Hex(), rs.operator.ID.Hex(), 2)
	_, err = fx.svc.ResetRoom(ctx, rs.operator.ID, rs.room.ID, fx.now.Add(time.Hour), c)
	assert.ErrorIs(t, err, ErrPaused)

	// Force close stays available while paused.
	fx.advance(24 * time.Hour)
	_, err = fx.svc.ForceCloseRoom(ctx, rs.operator.ID, rs.room.ID)
	require.NoError(t, err)

	require.NoError(t, fx.svc.ResumeOperations(ctx, rs.operator.ID))
	paused, err = fx.svc.IsPaused(ctx)
	require.NoError(t, err)
	assert.False(t, paused)
}

func TestWithdrawFees(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fixture, *roomSetup) {
		fx := newFixture(t)
		rs := fx.newRoom(t, 10, 42)
		winner := fx.newUser(t, models.RolePlayer, 100)
		loser := fx.newUser(t, models.RolePlayer, 100)
		wt, err := fx.svc.BuyTicket(ctx, winner.ID, rs.room.ID, 42)
		require.NoError(t, err)
		for _, n := range []int{1, 2, 3} {
			_, err := fx.svc.BuyTicket(ctx, loser.ID, rs.room.ID, n)
			require.NoError(t, err)
		}
		fx.advance(2 * time.Hour)
		fx.reveal(t, rs)
		_, err = fx.svc.ClaimPrize(ctx, winner.ID, rs.room.ID, wt.Index)
		require.NoError(t, err) // books fee 4
		return fx, rs
	}

	t.Run("zero amount withdraws everything", func(t *testing.T) {
		fx, rs := setup(t)
		amount, err := fx.svc.WithdrawFees(ctx, rs.operator.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(4), amount)
		assert.Equal(t, int64(4), fx.ledger.Balance(rs.operator.LedgerAccount))

		account, err := fx.svc.GetFeeAccount(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), account.Available())
	})

	t.Run("partial withdrawal and over-withdrawal", func(t *testing.T) {
		fx, rs := setup(t)
		amount, err := fx.svc.WithdrawFees(ctx, rs.operator.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(3), amount)

		_, err = fx.svc.WithdrawFees(ctx, rs.operator.ID, 2)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("pays the configured recipient", func(t *testing.T) {
		fx, rs := setup(t)
		require.NoError(t, fx.svc.SetFeeRecipient(ctx, rs.operator.ID, "treasury"))
		_, err := fx.svc.WithdrawFees(ctx, rs.operator.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(4), fx.ledger.Balance("treasury"))
	})

	t.Run("rejects an empty recipient", func(t *testing.T) {
		fx, rs := setup(t)
		err := fx.svc.SetFeeRecipient(ctx, rs.operator.ID, "")
		assert.ErrorIs(t, err, ErrInvalidAddress)
	})
}

func TestListRoomsRecomputesState(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	rs := fx.newRoom(t, 10, 42)

	rooms, err := fx.svc.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, models.RoomStateOpen, rooms[0].State)

	fx.advance(2 * time.Hour)
	rooms, err = fx.svc.ListRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatePendingReveal, rooms[0].State)
	_ = rs
}

func TestGetPlayerTickets(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	rs := fx.newRoom(t, 10, 42)
	a := fx.newUser(t, models.RolePlayer, 100)
	b := fx.newUser(t, models.RolePlayer, 100)
	_, err := fx.svc.BuyTicket(ctx, a.ID, rs.room.ID, 1)
	require.NoError(t, err)
	_, err = fx.svc.BuyTicket(ctx, b.ID, rs.room.ID, 2)
	require.NoError(t, err)
	_, err = fx.svc.BuyTicket(ctx, a.ID, rs.room.ID, 3)
	require.NoError(t, err)

	mine, err := fx.svc.GetPlayerTickets(ctx, rs.room.ID, a.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, tk := range mine {
		assert.Equal(t, a.ID, tk.OwnerID)
	}

	stats, err := fx.svc.GetPlayerStats(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalTickets)
}
