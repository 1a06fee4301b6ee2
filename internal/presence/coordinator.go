package presence

import (
	"context"
	"errors"
	"fmt"
	"sync"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/room-service/internal/model"
)

type State string

const (
	StateUnbound State = "UNBOUND"
	StateJoining State = "JOINING"
	StateActive  State = "ACTIVE"
	StateLeaving State = "LEAVING"
	StateKicked  State = "KICKED"
	StateClosed  State = "CLOSED"
)

type RemovalReason string

const (
	ReasonLeft   RemovalReason = "LEFT"
	ReasonKicked RemovalReason = "KICKED"
)

type SignalKind string

const (
	SignalRosterChanged SignalKind = "roster_changed"
	SignalSelfRemoved   SignalKind = "self_removed"
)

type Signal struct {
	Kind   SignalKind
	Roster model.Roster
	Reason RemovalReason
}

const signalBuffer = 32

// Coordinator owns one client's live membership view of a single room.
// It bridges the durable store and the change notification stream and
// serializes every mutation, so consumers never observe a torn roster.
type Coordinator struct {
	store    MembershipStore
	source   EventSource
	resolver ProfileResolver
	logger   logger_lib.LoggerInterface
	userID   string

	mu      sync.Mutex
	state   State
	roomID  string
	ownerID string
	roster  model.Roster
	sub     Subscription
	leaving bool

	// cancel is guarded separately from mu: the event loop holds mu across
	// store calls, so teardown must be able to cancel them without taking it
	cancelMu sync.Mutex
	cancel   context.CancelFunc

	signals  chan Signal
	done     chan struct{}
	doneOnce sync.Once
}

func New(store MembershipStore, source EventSource, resolver ProfileResolver, logger logger_lib.LoggerInterface, userID string) *Coordinator {
	return &Coordinator{
		store:    store,
		source:   source,
		resolver: resolver,
		logger:   logger,
		userID:   userID,
		state:    StateUnbound,
		signals:  make(chan Signal, signalBuffer),
		done:     make(chan struct{}),
	}
}

// Signals delivers RosterChanged and SelfRemoved to the consumer in emit
// order. The consumer is expected to drain it.
func (c *Coordinator) Signals() <-chan Signal {
	return c.signals
}

// Done is closed once the coordinator reaches a terminal state.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Roster returns a copy of the current membership view.
func (c *Coordinator) Roster() model.Roster {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneRoster(c.roster)
}

// EnsureJoined makes the caller a member of the room, opens the live
// subscription and returns the initial owner-first roster. A repeated call
// for the bound room reuses the subscription and is a no-op. A duplicate
// row reported by the store is treated as success.
func (c *Coordinator) EnsureJoined(ctx context.Context, roomID string) (model.Roster, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateUnbound:
	case StateActive:
		if c.roomID == roomID {
			return cloneRoster(c.roster), nil
		}
		return nil, fmt.Errorf("coordinator is already bound to room %s", c.roomID)
	default:
		return nil, fmt.Errorf("coordinator is %s", c.state)
	}

	c.state = StateJoining

	room, err := c.store.GetRoom(ctx, roomID)
	if err != nil {
		c.state = StateUnbound
		if errors.Is(err, ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := c.store.AddRoomMember(ctx, roomID, c.userID); err != nil && !errors.Is(err, ErrAlreadyExists) {
		c.state = StateUnbound
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	runCtx, cancel := context.WithCancel(context.Background())

	sub, err := c.source.Subscribe(runCtx, roomID)
	if err != nil {
		cancel()
		c.state = StateUnbound
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	roster, err := c.fetchRoster(ctx, roomID, room.OwnerID)
	if err != nil {
		cancel()
		_ = sub.Close()
		c.state = StateUnbound
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	c.roomID = roomID
	c.ownerID = room.OwnerID
	c.roster = roster
	c.sub = sub
	c.setCancel(cancel)
	c.state = StateActive

	go c.run(runCtx, sub)

	return cloneRoster(roster), nil
}

// Leave deletes the caller's own membership row. The write is attempted
// even if the subscription is down; on success SelfRemoved(LEFT) is raised
// locally without waiting for the event round trip.
func (c *Coordinator) Leave(ctx context.Context) error {
	c.mu.Lock()

	if c.state != StateActive {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: coordinator is %s", ErrLeaveFailed, state)
	}

	c.leaving = true
	if err := c.store.RemoveRoomMember(ctx, c.roomID, c.userID); err != nil {
		c.leaving = false
		c.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrLeaveFailed, err)
	}

	sig := c.selfRemovedLocked()
	c.mu.Unlock()

	c.emit(sig)
	return nil
}

// Kick removes the target from the room. Only the room owner may kick;
// the check happens before any store write. Kicking yourself leaves the
// room. The target is removed locally right away, so the later deleted
// event for the same user is a no-op.
func (c *Coordinator) Kick(ctx context.Context, targetUserID string) error {
	c.mu.Lock()

	if c.state != StateActive {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: coordinator is %s", ErrKickFailed, state)
	}

	if c.userID != c.ownerID {
		c.mu.Unlock()
		return ErrNotAuthorized
	}

	if targetUserID == c.userID {
		c.mu.Unlock()
		return c.Leave(ctx)
	}

	if err := c.store.RemoveRoomMember(ctx, c.roomID, targetUserID); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrKickFailed, err)
	}

	roster, changed := removeEntry(c.roster, targetUserID)
	var sig *Signal
	if changed {
		c.roster = roster
		sig = &Signal{Kind: SignalRosterChanged, Roster: cloneRoster(roster)}
	}
	c.mu.Unlock()

	if sig != nil {
		c.emit(*sig)
	}
	return nil
}

// Teardown closes the subscription, cancels in-flight refetches and
// releases the roster. Safe to call multiple times, from any goroutine,
// and on a coordinator that never joined.
func (c *Coordinator) Teardown() {
	// cancel before taking mu: an in-flight refetch may be holding it on a
	// blocked store call and only the run context can unblock it
	c.cancelRun()

	c.mu.Lock()
	if c.sub != nil {
		_ = c.sub.Close()
		c.sub = nil
	}
	c.roster = nil
	c.state = StateClosed
	c.mu.Unlock()

	c.markDone()
}

func (c *Coordinator) run(ctx context.Context, sub Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			c.handleEvent(ctx, ev)
		}
	}
}

func (c *Coordinator) handleEvent(ctx context.Context, ev model.MembershipEvent) {
	c.mu.Lock()

	if c.state != StateActive || ev.RoomID != c.roomID {
		c.mu.Unlock()
		return
	}

	switch ev.Type {
	case model.EventDeleted:
		if ev.UserID == c.userID {
			sig := c.selfRemovedLocked()
			c.mu.Unlock()
			c.emit(sig)
			return
		}

		roster, changed := removeEntry(c.roster, ev.UserID)
		if !changed {
			c.mu.Unlock()
			return
		}
		c.roster = roster
		sig := Signal{Kind: SignalRosterChanged, Roster: cloneRoster(roster)}
		c.mu.Unlock()
		c.emit(sig)

	case model.EventInserted:
		if c.roster.Contains(ev.UserID) {
			c.mu.Unlock()
			return
		}
		c.refetchAndEmit(ctx)

	case model.EventUpdated, model.EventResubscribed:
		// attribute changes and reconnect gaps are reconciled by snapshot
		c.refetchAndEmit(ctx)

	default:
		c.mu.Unlock()
	}
}

// refetchAndEmit replaces the roster with the latest store snapshot.
// Called with c.mu held; releases it.
func (c *Coordinator) refetchAndEmit(ctx context.Context) {
	roster, err := c.fetchRoster(ctx, c.roomID, c.ownerID)
	if err != nil {
		c.mu.Unlock()
		if ctx.Err() == nil {
			c.logger.Error(fmt.Sprintf("failed to refetch roster: %v", err))
		}
		return
	}
	if ctx.Err() != nil {
		// torn down while the fetch was in flight
		c.mu.Unlock()
		return
	}

	c.roster = roster
	sig := Signal{Kind: SignalRosterChanged, Roster: cloneRoster(roster)}
	c.mu.Unlock()
	c.emit(sig)
}

func (c *Coordinator) fetchRoster(ctx context.Context, roomID, ownerID string) (model.Roster, error) {
	userIDs, err := c.store.ListRoomMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}

	profiles, err := c.resolver.ResolveMany(ctx, userIDs)
	if err != nil {
		// roster delivery is never blocked on profile data
		c.logger.Warn(fmt.Sprintf("profile resolution failed, using placeholders: %v", err))
		profiles = nil
	}

	return BuildRoster(ownerID, userIDs, profiles), nil
}

func (c *Coordinator) selfRemovedLocked() Signal {
	reason := ReasonKicked
	c.state = StateKicked
	if c.leaving {
		reason = ReasonLeft
		c.state = StateLeaving
	}

	c.roster = nil
	c.cancelRun()
	if c.sub != nil {
		_ = c.sub.Close()
		c.sub = nil
	}

	c.markDone()
	return Signal{Kind: SignalSelfRemoved, Reason: reason}
}

func (c *Coordinator) setCancel(cancel context.CancelFunc) {
	c.cancelMu.Lock()
	c.cancel = cancel
	c.cancelMu.Unlock()
}

func (c *Coordinator) cancelRun() {
	c.cancelMu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.cancelMu.Unlock()
}

// emit never blocks the event loop. A RosterChanged that does not fit is
// dropped, the next refetch carries the full roster anyway. SelfRemoved is
// terminal and has no later signal to supersede it, so it evicts the oldest
// queued signal instead. The coordinator is the only sender, which keeps
// the evict-then-send step race free.
func (c *Coordinator) emit(sig Signal) {
	for {
		select {
		case c.signals <- sig:
			return
		default:
		}

		if sig.Kind != SignalSelfRemoved {
			c.logger.Warn(fmt.Sprintf("dropped %s signal: consumer is not draining", sig.Kind))
			return
		}

		select {
		case <-c.signals:
		default:
		}
	}
}

func (c *Coordinator) markDone() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}
