package registry

import (
	"fmt"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"

	"github.com/Samuel1505/TrustBridge-sub000/models"
)

const (
	RevocationThreshold = 5
	MinReasonLength     = 20
)

type challengeState struct {
	challengers []common.Address
	seen        map[common.Address]bool
	revoked     bool
}

func newChallengeState() *challengeState {
	return &challengeState{seen: make(map[common.Address]bool)}
}

func (c *challengeState) snapshot() models.ChallengeState {
	challengers := make([]common.Address, len(c.challengers))
	copy(challengers, c.challengers)
	return models.ChallengeState{
		Challengers: challengers,
		Count:       uint64(len(c.challengers)),
		Revoked:     c.revoked,
	}
}

func systemRevokeReason(count int) string {
	return fmt.Sprintf("automatically revoked after %d challenges", count)
}

// Challenge records caller as a distinct challenger of ngo. The challenge that
// brings the count to RevocationThreshold revokes an active NGO in the same
// call; that transition happens at most once per NGO.
func (r *Registry) Challenge(ngo common.Address, reason string, caller common.Address) (uint64, error) {
	if err := r.guard.enter(); err != nil {
		return 0, err
	}
	defer r.guard.exit()

	if caller == ngo {
		return 0, ErrCannotChallengeSelf
	}
	if utf8.RuneCountInString(reason) < MinReasonLength {
		return 0, ErrReasonTooShort
	}

	r.mu.Lock()
	record, ok := r.ngos[ngo]
	if !ok {
		r.mu.Unlock()
		return 0, ErrNGONotFound
	}
	state, ok := r.challenges[ngo]
	if !ok {
		state = newChallengeState()
		r.challenges[ngo] = state
	}
	if state.seen[caller] {
		r.mu.Unlock()
		return 0, ErrAlreadyChallenged
	}

	state.seen[caller] = true
	state.challengers = append(state.challengers, caller)
	count := len(state.challengers)

	events := []models.Event{{
		Kind:   models.EventNGOChallenged,
		NGO:    ngo.Hex(),
		Actor:  caller.Hex(),
		Reason: reason,
		Count:  uint64(count),
	}}

	revoked := false
	if count == RevocationThreshold && !state.revoked {
		state.revoked = true
		if record.IsActive {
			record.IsActive = false
			revoked = true
			events = append(events, models.Event{
				Kind:   models.EventNGORevoked,
				NGO:    ngo.Hex(),
				Reason: systemRevokeReason(count),
				Count:  uint64(count),
			})
		}
	}
	r.mu.Unlock()

	r.emit(events...)

	log.Info("[REGISTRY] NGO ", ngo.Hex(), " challenged by ", caller.Hex(), ", count: ", count)
	if revoked {
		log.Warn("[REGISTRY] NGO ", ngo.Hex(), " revoked after ", count, " challenges")
	}
	return uint64(count), nil
}

func (r *Registry) ChallengeCount(ngo common.Address) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if state, ok := r.challenges[ngo]; ok {
		return uint64(len(state.challengers))
	}
	return 0
}

func (r *Registry) HasChallenged(ngo common.Address, challenger common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if state, ok := r.challenges[ngo]; ok {
		return state.seen[challenger]
	}
	return false
}

// Challengers returns the challenge state of ngo. An NGO nobody challenged
// yields the zero state.
func (r *Registry) Challengers(ngo common.Address) models.ChallengeState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if state, ok := r.challenges[ngo]; ok {
		return state.snapshot()
	}
	return models.ChallengeState{Challengers: []common.Address{}}
}
