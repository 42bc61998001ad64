// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-kvgateway.
//
// go-kvgateway is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package server

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/jeremyhahn/go-kvgateway/pkg/logging"
)

// Lifecycle states.
const (
	StateCreated  = "created"
	StateStarting = "starting"
	StateRunning  = "running"
	StateStopping = "stopping"
	StateStopped  = "stopped"
	StateFailed   = "failed"
)

const (
	eventStart   = "start"
	eventStarted = "started"
	eventFail    = "fail"
	eventStop    = "stop"
	eventStopped = "stopped"
)

func (s *Server) newLifecycle() *fsm.FSM {
	return fsm.NewFSM(
		StateCreated,
		fsm.Events{
			{Name: eventStart, Src: []string{StateCreated}, Dst: StateStarting},
			{Name: eventStarted, Src: []string{StateStarting}, Dst: StateRunning},
			{Name: eventFail, Src: []string{StateStarting, StateRunning}, Dst: StateFailed},
			{Name: eventStop, Src: []string{StateCreated, StateStarting, StateRunning, StateFailed}, Dst: StateStopping},
			{Name: eventStopped, Src: []string{StateStopping}, Dst: StateStopped},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				s.logger.Debug("Lifecycle transition",
					logging.String("event", e.Event),
					logging.String("from", e.Src),
					logging.String("to", e.Dst))
			},
			"enter_" + StateRunning: func(_ context.Context, _ *fsm.Event) {
				if s.healthChecker != nil {
					s.healthChecker.MarkStarted()
				}
			},
			"leave_" + StateRunning: func(_ context.Context, _ *fsm.Event) {
				if s.healthChecker != nil {
					s.healthChecker.MarkNotStarted()
				}
			},
		},
	)
}

// State returns the current lifecycle state.
func (s *Server) State() string {
	return s.lifecycle.Current()
}

func (s *Server) transition(event string) error {
	return s.lifecycle.Event(context.Background(), event)
}
