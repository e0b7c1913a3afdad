package game

import (
	"errors"
	"testing"
	"time"

	"prize_wheel/internal/model"
)

func TestMeterBangup(t *testing.T) {
	m := NewCreditMeter(2000, 5*time.Second)

	if !m.BangupTo(1000) {
		t.Fatal("expected bangup to start")
	}
	if m.Update(2500 * time.Millisecond) {
		t.Error("expected bangup to be halfway, not finished")
	}
	if m.Balance() != 2500 || m.Winnings() != 500 {
		t.Errorf("expected balance 2500 and winnings 500, got %d and %d", m.Balance(), m.Winnings())
	}

	if !m.Update(2500 * time.Millisecond) {
		t.Error("expected bangup to finish")
	}
	if m.Balance() != 3000 || m.Winnings() != 1000 {
		t.Errorf("expected balance 3000 and winnings 1000, got %d and %d", m.Balance(), m.Winnings())
	}
	if m.BangupActive() {
		t.Error("expected bangup to be over")
	}
	if m.Update(time.Second) {
		t.Error("expected finished bangup to stay finished")
	}
}

func TestMeterBangupInFrames(t *testing.T) {
	m := NewCreditMeter(0, 5*time.Second)
	m.BangupTo(5000)

	finished := 0
	for i := 0; i < 600; i++ {
		if m.Update(16 * time.Millisecond) {
			finished++
		}
	}
	if finished != 1 {
		t.Errorf("expected bangup to finish once, finished %d times", finished)
	}
	if m.Balance() != 5000 {
		t.Errorf("expected exact balance 5000, got %d", m.Balance())
	}
}

func TestMeterCompleteBangup(t *testing.T) {
	m := NewCreditMeter(1500, 5*time.Second)
	m.BangupTo(200)
	m.Update(time.Second)

	if !m.CompleteBangup() {
		t.Fatal("expected bangup to complete")
	}
	if m.Balance() != 1700 {
		t.Errorf("expected balance 1700, got %d", m.Balance())
	}
	if m.CompleteBangup() {
		t.Error("expected repeated completion to be ignored")
	}
	if m.Balance() != 1700 {
		t.Errorf("expected balance to stay 1700, got %d", m.Balance())
	}
}

func TestMeterBangupNothing(t *testing.T) {
	m := NewCreditMeter(100, 5*time.Second)
	if m.BangupTo(0) {
		t.Error("expected empty bangup not to start")
	}

	instant := NewCreditMeter(100, 0)
	if instant.BangupTo(50) {
		t.Error("expected bangup without duration to apply at once")
	}
	if instant.Balance() != 150 {
		t.Errorf("expected balance 150, got %d", instant.Balance())
	}
}

func TestMeterDeduct(t *testing.T) {
	m := NewCreditMeter(600, time.Second)

	if err := m.Deduct(500); err != nil {
		t.Fatalf("Deduct failed: %v", err)
	}
	if m.Balance() != 100 {
		t.Errorf("expected balance 100, got %d", m.Balance())
	}

	err := m.Deduct(500)
	if !errors.Is(err, model.ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
	if m.Balance() != 100 {
		t.Errorf("expected balance to stay 100, got %d", m.Balance())
	}
}
