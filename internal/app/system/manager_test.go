package system

import (
	"context"
	"errors"
	"testing"
)

type recordedService struct {
	name     string
	startErr error
	stopErr  error
	events   *[]string
}

func (s *recordedService) Name() string { return s.name }

func (s *recordedService) Start(ctx context.Context) error {
	*s.events = append(*s.events, "start:"+s.name)
	return s.startErr
}

func (s *recordedService) Stop(ctx context.Context) error {
	*s.events = append(*s.events, "stop:"+s.name)
	return s.stopErr
}

func TestStartStopOrder(t *testing.T) {
	var events []string
	m := NewManager()
	for _, name := range []string{"a", "b", "c"} {
		if err := m.Register(&recordedService{name: name, events: &events}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	if err := m.StartAll(context.Background()); err != nil {
		t.Fatalf("start all: %v", err)
	}
	if err := m.StopAll(context.Background()); err != nil {
		t.Fatalf("stop all: %v", err)
	}

	want := []string{"start:a", "start:b", "start:c", "stop:c", "stop:b", "stop:a"}
	if len(events) != len(want) {
		t.Fatalf("events = %v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}
}

func TestStartFailureRollsBack(t *testing.T) {
	var events []string
	m := NewManager()
	m.Register(&recordedService{name: "a", events: &events})
	m.Register(&recordedService{name: "b", startErr: errors.New("boom"), events: &events})
	m.Register(&recordedService{name: "c", events: &events})

	if err := m.StartAll(context.Background()); err == nil {
		t.Fatal("expected start error")
	}

	want := []string{"start:a", "start:b", "stop:a"}
	if len(events) != len(want) {
		t.Fatalf("events = %v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}
}

func TestRegisterAfterStart(t *testing.T) {
	var events []string
	m := NewManager()
	if err := m.StartAll(context.Background()); err != nil {
		t.Fatalf("start all: %v", err)
	}
	if err := m.Register(&recordedService{name: "late", events: &events}); err == nil {
		t.Fatal("expected registration error after start")
	}
}

func TestStopAllCollectsFirstError(t *testing.T) {
	var events []string
	stopErr := errors.New("stop failed")
	m := NewManager()
	m.Register(&recordedService{name: "a", stopErr: stopErr, events: &events})
	m.Register(&recordedService{name: "b", events: &events})

	if err := m.StartAll(context.Background()); err != nil {
		t.Fatalf("start all: %v", err)
	}
	if err := m.StopAll(context.Background()); !errors.Is(err, stopErr) {
		t.Fatalf("expected stop error, got %v", err)
	}
	// Both services still stopped.
	if events[len(events)-1] != "stop:a" {
		t.Fatalf("events = %v", events)
	}
}
