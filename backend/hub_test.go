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
	"sync"
	"testing"
	"time"
)

// memoryPersister records every write.
type memoryPersister struct {
	mu     sync.Mutex
	saves  []*GameData
	stored map[string]*GameData
}

func newMemoryPersister() *memoryPersister {
	return &memoryPersister{stored: make(map[string]*GameData)}
}

func (p *memoryPersister) SaveScorecard(id string, g *GameData) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves = append(p.saves, g.Clone())
	p.stored[id] = g.Clone()
	return nil
}

func (p *memoryPersister) RestoreScorecard(id string) *GameData {
	p.mu.Lock()
	defer p.mu.Unlock()
	if g, ok := p.stored[id]; ok {
		return g.Clone()
	}
	return NewGameData()
}

func (p *memoryPersister) writes() []*GameData {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*GameData(nil), p.saves...)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func newTestHubManager(t *testing.T, p ScorecardPersister, delay time.Duration) *HubManager {
	t.Helper()
	hm := NewHubManager(p, delay)
	t.Cleanup(func() { hm.CloseAll(context.Background()) })
	return hm
}

func mustDo(t *testing.T, hm *HubManager, reqType string, cmd Command) HubResponse {
	t.Helper()
	resp, err := hm.Do(t.Context(), DefaultScorecardID, reqType, cmd)
	if err != nil {
		t.Fatalf("Do(%s): %v", reqType, err)
	}
	return resp
}

func TestDebouncedWritesCoalesce(t *testing.T) {
	p := newMemoryPersister()
	delay := 100 * time.Millisecond
	hm := newTestHubManager(t, p, delay)

	for range 5 {
		resp := mustDo(t, hm, ReqTypeCell, Command{Team: TeamHome, Player: 1, Inning: 1})
		if !resp.Applied {
			t.Fatalf("edit not applied: %v", resp.Error)
		}
	}
	waitFor(t, "debounced write", func() bool { return len(p.writes()) > 0 })
	time.Sleep(3 * delay)

	writes := p.writes()
	if len(writes) != 1 {
		t.Fatalf("%d writes, want 1", len(writes))
	}
	if got := writes[0].Cell(TeamHome, 1, 1); got != ActionError {
		t.Errorf("written cell = %s, want the final state (error)", got)
	}
}

func TestRejectedEditIsNotWritten(t *testing.T) {
	p := newMemoryPersister()
	hm := newTestHubManager(t, p, 20*time.Millisecond)

	resp := mustDo(t, hm, ReqTypeCell, Command{Team: TeamHome, Player: 1, Inning: 3})
	if resp.Applied || !errors.Is(resp.Error, ErrOutOfSequence) {
		t.Fatalf("resp = %+v", resp)
	}
	if len(resp.Updates) != 1 || resp.Updates[0].Kind != UpdateNotify {
		t.Errorf("updates = %+v", resp.Updates)
	}
	resp = mustDo(t, hm, ReqTypeScore, Command{Team: TeamVisiting, Delta: -1})
	if resp.Applied || !errors.Is(resp.Error, ErrScoreBounds) {
		t.Fatalf("resp = %+v", resp)
	}
	time.Sleep(100 * time.Millisecond)
	if n := len(p.writes()); n != 0 {
		t.Errorf("%d writes after rejected edits", n)
	}
}

func TestSaveWritesImmediately(t *testing.T) {
	p := newMemoryPersister()
	delay := 50 * time.Millisecond
	hm := newTestHubManager(t, p, delay)

	mustDo(t, hm, ReqTypeField, Command{Key: FieldHomeTeam, Value: "Cubs"})
	resp := mustDo(t, hm, ReqTypeSave, Command{})
	if n := len(p.writes()); n != 1 {
		t.Fatalf("%d writes after save, want 1", n)
	}
	if got := notifications(resp.Updates); len(got) != 1 || got[0] != "success: "+msgSaved {
		t.Errorf("notifications = %v", got)
	}
	// The pending debounced write was absorbed by the save.
	time.Sleep(3 * delay)
	if n := len(p.writes()); n != 1 {
		t.Errorf("%d writes, want 1", n)
	}
}

func TestTeardownFlushesPendingEdits(t *testing.T) {
	p := newMemoryPersister()
	hm := NewHubManager(p, time.Hour)

	mustDo(t, hm, ReqTypeCell, Command{Team: TeamVisiting, Player: 9, Inning: 1})
	if n := len(p.writes()); n != 0 {
		t.Fatalf("%d writes before teardown", n)
	}
	if err := hm.CloseAll(t.Context()); err != nil {
		t.Fatal(err)
	}
	writes := p.writes()
	if len(writes) != 1 || writes[0].Cell(TeamVisiting, 9, 1) != ActionHit {
		t.Fatalf("writes = %d", len(writes))
	}
	if _, err := hm.Do(t.Context(), DefaultScorecardID, ReqTypeSnapshot, Command{}); !errors.Is(err, ErrHubClosed) {
		t.Errorf("Do after CloseAll err = %v", err)
	}
}

func TestClearWritesEmptyScorecard(t *testing.T) {
	p := newMemoryPersister()
	hm := newTestHubManager(t, p, time.Hour)

	for range 5 {
		mustDo(t, hm, ReqTypeScore, Command{Team: TeamHome, Delta: 1})
	}
	for range 3 {
		mustDo(t, hm, ReqTypeScore, Command{Team: TeamVisiting, Delta: 1})
	}
	mustDo(t, hm, ReqTypeCell, Command{Team: TeamHome, Player: 2, Inning: 1})

	resp := mustDo(t, hm, ReqTypeClear, Command{})
	if !resp.Applied {
		t.Fatal(resp.Error)
	}
	writes := p.writes()
	if len(writes) != 1 {
		t.Fatalf("%d writes, want 1", len(writes))
	}
	assertSameSnapshot(t, NewGameData(), writes[0])
	assertSameSnapshot(t, NewGameData(), resp.State)
}

func TestLoadKeepsPendingEdits(t *testing.T) {
	p := newMemoryPersister()
	p.stored[DefaultScorecardID] = sampleGameData()
	hm := newTestHubManager(t, p, time.Hour)

	mustDo(t, hm, ReqTypeField, Command{Key: FieldGameNotes, Value: "walk-off"})
	resp := mustDo(t, hm, ReqTypeLoad, Command{})
	if resp.State.GameNotes != "walk-off" || resp.State.HomeTeam != "Cubs" {
		t.Errorf("loaded state = %+v", resp.State)
	}
	if got := notifications(resp.Updates); len(got) != 1 || got[0] != "success: "+msgLoaded {
		t.Errorf("notifications = %v", got)
	}
}

func TestForgetDiscardsPendingEdits(t *testing.T) {
	p := newMemoryPersister()
	hm := newTestHubManager(t, p, time.Hour)

	mustDo(t, hm, ReqTypeCell, Command{Team: TeamHome, Player: 1, Inning: 1})
	hm.Forget(DefaultScorecardID)
	if n := len(p.writes()); n != 0 {
		t.Errorf("%d writes after Forget", n)
	}
	// A new hub starts from storage.
	resp := mustDo(t, hm, ReqTypeSnapshot, Command{})
	if resp.State.Cell(TeamHome, 1, 1) != ActionNone {
		t.Error("forgotten edit survived")
	}
}

func TestIdleHubStops(t *testing.T) {
	p := newMemoryPersister()
	hm := newTestHubManager(t, p, time.Hour)
	hm.IdleTimeout = 30 * time.Millisecond

	mustDo(t, hm, ReqTypeCell, Command{Team: TeamHome, Player: 1, Inning: 1})
	waitFor(t, "idle hub removal", func() bool {
		hm.mu.Lock()
		defer hm.mu.Unlock()
		return len(hm.hubs) == 0
	})
	waitFor(t, "idle flush", func() bool { return len(p.writes()) == 1 })

	resp := mustDo(t, hm, ReqTypeSnapshot, Command{})
	if resp.State.Cell(TeamHome, 1, 1) != ActionHit {
		t.Error("edit lost across idle restart")
	}
}

func TestHubRecoversFromPanic(t *testing.T) {
	hm := newTestHubManager(t, &panicPersister{}, time.Hour)
	resp, err := hm.Do(t.Context(), DefaultScorecardID, ReqTypeSave, Command{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil {
		t.Fatal("expected an error")
	}
	if got := notifications(resp.Updates); len(got) != 1 || got[0] != "error: "+msgInternalError {
		t.Errorf("notifications = %v", got)
	}
	// The hub keeps serving.
	resp = mustDo(t, hm, ReqTypeCell, Command{Team: TeamHome, Player: 1, Inning: 1})
	if !resp.Applied {
		t.Errorf("hub stopped serving: %v", resp.Error)
	}
}

// panicPersister panics on its first write only.
type panicPersister struct {
	once sync.Once
}

func (p *panicPersister) SaveScorecard(string, *GameData) error {
	p.once.Do(func() { panic("disk on fire") })
	return nil
}

func (p *panicPersister) RestoreScorecard(string) *GameData {
	return NewGameData()
}

// flakyPersister fails its first write.
type flakyPersister struct {
	*memoryPersister
	failed bool
}

func (p *flakyPersister) SaveScorecard(id string, g *GameData) error {
	if !p.failed {
		p.failed = true
		return errors.New("disk full")
	}
	return p.memoryPersister.SaveScorecard(id, g)
}

func TestFailedWriteIsRetriedOnTeardown(t *testing.T) {
	p := &flakyPersister{memoryPersister: newMemoryPersister()}
	hm := NewHubManager(p, time.Hour)

	mustDo(t, hm, ReqTypeCell, Command{Team: TeamHome, Player: 1, Inning: 1})
	// The edit is still applied and confirmed.
	resp := mustDo(t, hm, ReqTypeSave, Command{})
	if got := notifications(resp.Updates); len(got) != 1 || got[0] != "success: "+msgSaved {
		t.Errorf("notifications = %v", got)
	}
	if len(p.writes()) != 0 {
		t.Fatalf("writes = %d, want 0", len(p.writes()))
	}

	if err := hm.CloseAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	writes := p.writes()
	if len(writes) != 1 || writes[0].Cell(TeamHome, 1, 1) != ActionHit {
		t.Fatalf("writes after teardown = %d", len(writes))
	}
	if s := hm.Metrics.Status(0); s.SaveErrors != 1 || s.Saves != 1 {
		t.Errorf("saves = %d, errors = %d", s.Saves, s.SaveErrors)
	}
}

func TestBusyHubOutlivesIdleTimeout(t *testing.T) {
	hm := newTestHubManager(t, newMemoryPersister(), time.Hour)
	hm.IdleTimeout = 100 * time.Millisecond

	mustDo(t, hm, ReqTypeHeader, Command{Inning: 1})
	for deadline := time.Now().Add(6 * hm.IdleTimeout); time.Now().Before(deadline); {
		resp := mustDo(t, hm, ReqTypeSnapshot, Command{})
		if resp.Headers.Active != 1 {
			t.Fatalf("header selection = %d after continuous activity, want 1", resp.Headers.Active)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestDeleteBlocksNewHubs(t *testing.T) {
	p := newMemoryPersister()
	hm := newTestHubManager(t, p, time.Hour)
	mustDo(t, hm, ReqTypeCell, Command{Team: TeamHome, Player: 1, Inning: 1})

	var during error
	removed := false
	err := hm.Delete(DefaultScorecardID, func(id string) error {
		_, during = hm.Do(t.Context(), id, ReqTypeCell, Command{Team: TeamHome, Player: 1, Inning: 1})
		removed = true
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Fatal("remove was not called")
	}
	if !errors.Is(during, ErrHubClosed) {
		t.Errorf("request during delete: err = %v, want ErrHubClosed", during)
	}
	if n := len(p.writes()); n != 0 {
		t.Errorf("%d writes, want the pending edit discarded", n)
	}

	// The id is usable again once the delete is done.
	resp := mustDo(t, hm, ReqTypeSnapshot, Command{})
	if resp.State.Cell(TeamHome, 1, 1) != ActionNone {
		t.Error("deleted scorecard came back")
	}
}
