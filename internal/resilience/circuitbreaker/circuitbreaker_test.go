package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func TestNew(t *testing.T) {
	cb := New(Config{
		Name:             "test-circuit",
		FailureThreshold: 2,
		RecoveryTimeout:  20 * time.Second,
	})

	if cb == nil {
		t.Fatal("expected circuit breaker, got nil")
	}
	if cb.Name() != "test-circuit" {
		t.Errorf("expected name='test-circuit', got %q", cb.Name())
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected initial state=Closed, got %v", cb.State())
	}
}

func TestExecute_Success(t *testing.T) {
	cb := New(DefaultConfig("test-circuit"))

	result, err := cb.Execute(func() (interface{}, error) {
		return "success", nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "success" {
		t.Errorf("expected result='success', got %v", result)
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected state=Closed after success, got %v", cb.State())
	}
}

func TestExecute_FailurePropagates(t *testing.T) {
	cb := New(DefaultConfig("test-circuit"))

	testErr := errors.New("test error")
	_, err := cb.Execute(func() (interface{}, error) {
		return nil, testErr
	})

	if err != testErr {
		t.Errorf("expected error=%v, got %v", testErr, err)
	}
	if cb.ConsecutiveFailures() != 1 {
		t.Errorf("expected 1 consecutive failure, got %d", cb.ConsecutiveFailures())
	}
}

func TestTripAfterConsecutiveFailures(t *testing.T) {
	cb := New(Config{
		Name:             "trip-test",
		FailureThreshold: 2,
		RecoveryTimeout:  time.Minute,
	})

	testErr := errors.New("boom")
	for i := 0; i < 2; i++ {
		_, err := cb.Execute(func() (interface{}, error) {
			return nil, testErr
		})
		if err != testErr {
			t.Fatalf("attempt %d: expected underlying error, got %v", i, err)
		}
	}

	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("expected state=Open after 2 failures, got %v", cb.State())
	}

	// While open, calls fail fast without invoking the function.
	calls := 0
	_, err := cb.Execute(func() (interface{}, error) {
		calls++
		return "should not run", nil
	})

	if !IsOpenError(err) {
		t.Errorf("expected open-circuit error, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected wrapped function not to be invoked, got %d calls", calls)
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := New(Config{
		Name:             "reset-test",
		FailureThreshold: 3,
		RecoveryTimeout:  time.Minute,
	})

	_, _ = cb.Execute(func() (interface{}, error) { return nil, errors.New("fail") })
	_, _ = cb.Execute(func() (interface{}, error) { return nil, errors.New("fail") })
	_, _ = cb.Execute(func() (interface{}, error) { return "ok", nil })

	if cb.ConsecutiveFailures() != 0 {
		t.Errorf("expected failure count reset after success, got %d", cb.ConsecutiveFailures())
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected state=Closed, got %v", cb.State())
	}
}

func TestHalfOpenRecovery(t *testing.T) {
	cb := New(Config{
		Name:             "recovery-test",
		FailureThreshold: 2,
		RecoveryTimeout:  50 * time.Millisecond,
	})

	for i := 0; i < 2; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, errors.New("fail") })
	}
	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("expected state=Open, got %v", cb.State())
	}

	time.Sleep(80 * time.Millisecond)

	// The next attempt is admitted as a single half-open trial.
	calls := 0
	result, err := cb.Execute(func() (interface{}, error) {
		calls++
		return "recovered", nil
	})

	if err != nil {
		t.Fatalf("expected trial to succeed, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected trial invoked exactly once, got %d", calls)
	}
	if result != "recovered" {
		t.Errorf("expected trial result, got %v", result)
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected state=Closed after trial success, got %v", cb.State())
	}
	if cb.ConsecutiveFailures() != 0 {
		t.Errorf("expected failure count reset, got %d", cb.ConsecutiveFailures())
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := New(Config{
		Name:             "reopen-test",
		FailureThreshold: 2,
		RecoveryTimeout:  50 * time.Millisecond,
	})

	for i := 0; i < 2; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, errors.New("fail") })
	}

	time.Sleep(80 * time.Millisecond)

	testErr := errors.New("still failing")
	_, err := cb.Execute(func() (interface{}, error) {
		return nil, testErr
	})

	if err != testErr {
		t.Errorf("expected trial error, got %v", err)
	}
	if cb.State() != gobreaker.StateOpen {
		t.Errorf("expected state=Open after trial failure, got %v", cb.State())
	}
}

func TestIsOpenError(t *testing.T) {
	if !IsOpenError(gobreaker.ErrOpenState) {
		t.Error("expected ErrOpenState to be an open error")
	}
	if !IsOpenError(gobreaker.ErrTooManyRequests) {
		t.Error("expected ErrTooManyRequests to be an open error")
	}
	if IsOpenError(errors.New("other")) {
		t.Error("expected unrelated error not to be an open error")
	}
	if IsOpenError(nil) {
		t.Error("expected nil not to be an open error")
	}
}
