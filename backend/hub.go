// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

var (
	// ErrHubBusy is returned when a hub's request queue is full.
	ErrHubBusy = errors.New("scorecard is busy")
	// ErrHubClosed is returned when a hub stopped before answering.
	ErrHubClosed = errors.New("scorecard is closed")
)

// ScorecardPersister is the storage a Hub writes through.
type ScorecardPersister interface {
	SaveScorecard(id string, g *GameData) error
	RestoreScorecard(id string) *GameData
}

// HubRequest types
const (
	ReqTypeCell       = "CELL"
	ReqTypeField      = "FIELD"
	ReqTypeScore      = "SCORE"
	ReqTypeHeader     = "HEADER"
	ReqTypePlayerInfo = "PLAYER_INFO"
	ReqTypeSave       = "SAVE"
	ReqTypeLoad       = "LOAD"
	ReqTypeClear      = "CLEAR"
	ReqTypeSnapshot   = "SNAPSHOT"
	ReqTypeWSJoin     = "WS_JOIN"
	ReqTypeWSReply    = "WS_REPLY"
	ReqTypeDiscard    = "DISCARD"
)

// Command carries the arguments of a hub request.
type Command struct {
	Team   Team   `json:"team,omitempty"`
	Player int    `json:"player,omitempty"`
	Inning int    `json:"inning,omitempty"`
	Key    string `json:"key,omitempty"`
	Value  string `json:"value,omitempty"`
	// Delta is +1 for an increment and -1 for a decrement.
	Delta int `json:"delta,omitempty"`
}

// HubRequest represents a request to the Hub
type HubRequest struct {
	Type    string
	Client  *wsClient // For WS joins and replies
	Direct  Message   // For WS replies
	Command Command
	Reply   chan HubResponse
}

// HubResponse represents a response from the Hub
type HubResponse struct {
	// Applied is false when the operation was refused (sequence or bounds).
	Applied bool
	Updates []Update
	State   *GameData
	Headers HeaderSequencer
	Error   error
}

// Hub owns one scorecard. Every request runs to completion on the hub
// goroutine, so the GameData is never touched concurrently.
type Hub struct {
	id string

	// Registered clients.
	clients map[*wsClient]bool

	// Inbound requests
	requests chan HubRequest

	// Register requests from the clients.
	register chan *wsClient

	// Unregister requests from clients.
	unregister chan *wsClient

	// quit is closed by the manager on teardown; done is closed when run returns.
	quit chan struct{}
	done chan struct{}

	sc      *Scorecard
	surface *updateRecorder

	saveDelay time.Duration
	saveTimer *time.Timer
	dirty     bool
	discarded bool

	// lastActive is the time of the last request or client change.
	lastActive time.Time

	store ScorecardPersister
	hm    *HubManager
}

func newHub(id string, store ScorecardPersister, hm *HubManager) *Hub {
	return &Hub{
		id:         id,
		clients:    make(map[*wsClient]bool),
		requests:   make(chan HubRequest, 64),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		surface:    &updateRecorder{},
		saveDelay:  hm.SaveDelay,
		store:      store,
		hm:         hm,
	}
}

func (h *Hub) run() {
	defer close(h.done)

	h.sc = NewScorecard(h.store.RestoreScorecard(h.id), h.surface)
	h.lastActive = time.Now()

	idleTimer := time.NewTicker(h.hm.IdleTimeout)
	defer idleTimer.Stop()

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.hm.Metrics.activeWS.Add(1)
			h.lastActive = time.Now()
		case client := <-h.unregister:
			h.dropClient(client)
			h.lastActive = time.Now()
		case req := <-h.requests:
			h.lastActive = time.Now()
			h.handle(req)
			if h.discarded {
				h.shutdown()
				return
			}
		case <-h.saveC():
			h.persist()
		case <-idleTimer.C:
			if len(h.clients) > 0 || time.Since(h.lastActive) < h.hm.IdleTimeout {
				continue
			}
			if h.hm.removeHub(h) {
				h.drain()
				h.shutdown()
				return
			}
		case <-h.quit:
			h.drain()
			h.shutdown()
			return
		}
	}
}

// drain handles requests that were queued before the hub stopped accepting them.
func (h *Hub) drain() {
	for {
		select {
		case req := <-h.requests:
			h.handle(req)
		default:
			return
		}
	}
}

func (h *Hub) shutdown() {
	if h.dirty {
		h.persist()
	}
	for client := range h.clients {
		h.dropClient(client)
	}
}

func (h *Hub) dropClient(client *wsClient) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.hm.Metrics.activeWS.Add(-1)
	}
}

func (h *Hub) saveC() <-chan time.Time {
	if h.saveTimer == nil {
		return nil
	}
	return h.saveTimer.C
}

// scheduleSave (re)arms the debounce timer. Only the last edit of a burst
// leads to a write.
func (h *Hub) scheduleSave() {
	h.dirty = true
	if h.saveTimer == nil {
		h.saveTimer = time.NewTimer(h.saveDelay)
		return
	}
	h.saveTimer.Reset(h.saveDelay)
}

// persist writes the current snapshot immediately and cancels a pending debounced write.
func (h *Hub) persist() {
	if h.saveTimer != nil {
		h.saveTimer.Stop()
	}
	err := h.store.SaveScorecard(h.id, h.sc.Data())
	h.hm.Metrics.observeSave(err)
	if err != nil {
		// Left dirty so a later write retries.
		log.Printf("Hub: failed to save scorecard %s: %v", h.id, err)
		return
	}
	h.dirty = false
}

func (h *Hub) handle(req HubRequest) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Hub: panic handling %s for scorecard %s: %v", req.Type, h.id, r)
			h.sc.Notify(msgInternalError, SeverityError)
			h.reply(req, HubResponse{Updates: h.publish(), Error: fmt.Errorf("internal error: %v", r)})
		}
	}()

	cmd := req.Command
	var err error
	mutated := false

	switch req.Type {
	case ReqTypeCell:
		_, err = h.sc.ClickCell(cmd.Team, cmd.Player, cmd.Inning)
		mutated = err == nil
	case ReqTypeField:
		if cmd.Player == 0 {
			err = h.sc.SetField(cmd.Key, cmd.Value)
		} else {
			err = h.sc.SetPlayerField(cmd.Team, cmd.Player, cmd.Key, cmd.Value)
		}
		mutated = err == nil
	case ReqTypeScore:
		if cmd.Delta >= 0 {
			_, err = h.sc.Increment(cmd.Team)
		} else {
			_, err = h.sc.Decrement(cmd.Team)
		}
		mutated = err == nil
	case ReqTypeHeader:
		_, err = h.sc.ClickHeader(cmd.Inning)
	case ReqTypePlayerInfo:
		h.sc.ClickPlayerInfo()
	case ReqTypeSave:
		h.persist()
		h.sc.Notify(msgSaved, SeveritySuccess)
	case ReqTypeLoad:
		if h.dirty {
			h.persist()
		}
		h.sc.Load(h.store.RestoreScorecard(h.id))
	case ReqTypeClear:
		h.sc.Clear()
		h.persist()
	case ReqTypeWSJoin:
		if req.Client != nil && h.clients[req.Client] {
			req.Client.sendJSON(Message{
				Type:        MsgTypeState,
				ScorecardID: h.id,
				Updates: []Update{{
					Kind:       UpdateState,
					State:      h.sc.Data().Clone(),
					Active:     intPtr(h.sc.Headers().Active),
					PlayerInfo: h.sc.Headers().PlayerInfo,
				}},
			})
		}
	case ReqTypeWSReply:
		if req.Client != nil && h.clients[req.Client] {
			req.Client.sendJSON(req.Direct)
		}
	case ReqTypeDiscard:
		if h.saveTimer != nil {
			h.saveTimer.Stop()
		}
		h.dirty = false
		h.discarded = true
	case ReqTypeSnapshot:
	default:
		err = fmt.Errorf("%w: request type %q", ErrOutOfRange, req.Type)
	}

	if mutated {
		h.scheduleSave()
	}
	h.reply(req, HubResponse{
		Applied: err == nil,
		Updates: h.publish(),
		State:   h.sc.Data().Clone(),
		Headers: h.sc.Headers(),
		Error:   err,
	})
}

func (h *Hub) reply(req HubRequest, resp HubResponse) {
	if req.Reply != nil {
		req.Reply <- resp
	}
}

// publish takes the pending surface updates and pushes them to every client.
func (h *Hub) publish() []Update {
	updates := h.surface.Take()
	if len(updates) > 0 {
		h.broadcast(Message{Type: MsgTypeUpdate, ScorecardID: h.id, Updates: updates})
	}
	return updates
}

func (h *Hub) broadcast(msg Message) {
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			h.dropClient(client)
		}
	}
}

// HubManager manages one hub per open scorecard.
type HubManager struct {
	SaveDelay   time.Duration
	IdleTimeout time.Duration
	Metrics     *Metrics

	store    ScorecardPersister
	hubs     map[string]*Hub
	deleting map[string]bool
	mu       sync.Mutex
	closed   bool
}

// NewHubManager creates a HubManager writing through store.
func NewHubManager(store ScorecardPersister, saveDelay time.Duration) *HubManager {
	if saveDelay <= 0 {
		saveDelay = DefaultSaveDelay
	}
	return &HubManager{
		SaveDelay:   saveDelay,
		IdleTimeout: 5 * time.Minute,
		Metrics:     NewMetrics(),
		store:       store,
		hubs:        make(map[string]*Hub),
		deleting:    make(map[string]bool),
	}
}

// GetHub returns the hub of scorecard id, starting it if needed.
func (hm *HubManager) GetHub(id string) (*Hub, error) {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	if hm.closed || hm.deleting[id] {
		return nil, ErrHubClosed
	}
	if hub, ok := hm.hubs[id]; ok {
		return hub, nil
	}
	hub := newHub(id, hm.store, hm)
	hm.hubs[id] = hub
	go hub.run()
	return hub, nil
}

func (hm *HubManager) removeHub(h *Hub) bool {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	if hm.hubs[h.id] != h {
		return false
	}
	delete(hm.hubs, h.id)
	return true
}

// OpenScorecards returns the number of running hubs.
func (hm *HubManager) OpenScorecards() int {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	return len(hm.hubs)
}

// Forget stops the hub of a deleted scorecard without writing it back.
func (hm *HubManager) Forget(id string) {
	hm.mu.Lock()
	hub, ok := hm.hubs[id]
	delete(hm.hubs, id)
	hm.mu.Unlock()
	if !ok {
		return
	}
	select {
	case hub.requests <- HubRequest{Type: ReqTypeDiscard}:
	case <-hub.done:
	}
	<-hub.done
}

// Delete discards the hub of scorecard id and calls remove. No hub can
// start for id until remove returns.
func (hm *HubManager) Delete(id string, remove func(id string) error) error {
	hm.mu.Lock()
	if hm.deleting[id] {
		hm.mu.Unlock()
		return ErrHubBusy
	}
	hm.deleting[id] = true
	hm.mu.Unlock()
	defer func() {
		hm.mu.Lock()
		delete(hm.deleting, id)
		hm.mu.Unlock()
	}()

	hm.Forget(id)
	return remove(id)
}

// Do sends one request to the hub of scorecard id and waits for its answer.
func (hm *HubManager) Do(ctx context.Context, id, reqType string, cmd Command) (HubResponse, error) {
	hub, err := hm.GetHub(id)
	if err != nil {
		return HubResponse{}, err
	}
	reply := make(chan HubResponse, 1)
	select {
	case hub.requests <- HubRequest{Type: reqType, Command: cmd, Reply: reply}:
	case <-hub.done:
		return HubResponse{}, ErrHubClosed
	default:
		return HubResponse{}, ErrHubBusy
	}
	select {
	case resp := <-reply:
		return resp, nil
	case <-hub.done:
		select {
		case resp := <-reply:
			return resp, nil
		default:
			return HubResponse{}, ErrHubClosed
		}
	case <-ctx.Done():
		return HubResponse{}, ctx.Err()
	}
}

// CloseAll stops every hub. Each hub writes its pending edits immediately.
func (hm *HubManager) CloseAll(ctx context.Context) error {
	hm.mu.Lock()
	hm.closed = true
	hubs := make([]*Hub, 0, len(hm.hubs))
	for _, hub := range hm.hubs {
		hubs = append(hubs, hub)
	}
	hm.hubs = make(map[string]*Hub)
	hm.mu.Unlock()

	for _, hub := range hubs {
		close(hub.quit)
	}
	for _, hub := range hubs {
		select {
		case <-hub.done:
		case <-ctx.Done():
			return fmt.Errorf("closing scorecard %s: %w", hub.id, ctx.Err())
		}
	}
	return nil
}
