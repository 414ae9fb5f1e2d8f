// Package lifecycle is the draft/live and lock state machine of a story.
package lifecycle

import (
	"fmt"

	"github.com/1rvyn/web-stories-editor/models"
)

type Status string

const (
	Draft Status = "draft"
	Live  Status = "live"
)

type Event string

const (
	Publish   Event = "publish"
	Unpublish Event = "unpublish"
	Edit      Event = "edit"
	Lock      Event = "lock"
	Unlock    Event = "unlock"
)

// State is the lifecycle part of a story. LockedBy is 0 when unlocked.
type State struct {
	Status   Status
	Locked   bool
	LockedBy uint
}

// Of reads the lifecycle state from a story.
func Of(s *models.Story) State {
	st := State{Status: Draft, Locked: s.Locked}
	if s.Live {
		st.Status = Live
	}
	if s.Locked && s.LockedByID != nil {
		st.LockedBy = *s.LockedByID
	}
	return st
}

var statusTransitions = map[Status]map[Event]Status{
	Draft: {Publish: Live, Edit: Draft},
	Live:  {Publish: Live, Unpublish: Draft, Edit: Live},
}

// Next returns the state reached when actor fires ev in st. It does not
// mutate anything.
func Next(st State, ev Event, actor uint) (State, error) {
	switch ev {
	case Lock:
		if st.Locked {
			return st, fmt.Errorf("%w: already locked", models.ErrInvalidTransition)
		}
		st.Locked, st.LockedBy = true, actor
		return st, nil
	case Unlock:
		if !st.Locked {
			return st, fmt.Errorf("%w: not locked", models.ErrInvalidTransition)
		}
		if st.LockedBy != 0 && st.LockedBy != actor {
			return st, models.ErrLocked
		}
		st.Locked, st.LockedBy = false, 0
		return st, nil
	}

	if st.Locked && st.LockedBy != actor {
		return st, models.ErrLocked
	}
	to, ok := statusTransitions[st.Status][ev]
	if !ok {
		return st, fmt.Errorf("%w: %s from %s", models.ErrInvalidTransition, ev, st.Status)
	}
	st.Status = to
	return st, nil
}
