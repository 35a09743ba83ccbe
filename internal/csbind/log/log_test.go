package log

import "testing"

func TestRecoverPanicRunsCleanup(t *testing.T) {
	cleaned := false
	func() {
		defer RecoverPanic("test", func() { cleaned = true })
		panic("boom")
	}()
	if !cleaned {
		t.Error("cleanup not called")
	}
}

func TestRecoverPanicWithoutPanic(t *testing.T) {
	cleaned := false
	func() {
		defer RecoverPanic("test", func() { cleaned = true })
	}()
	if cleaned {
		t.Error("cleanup called without a panic")
	}
}

func TestSetupOnce(t *testing.T) {
	t.Setenv("CSBIND_LOG_TO_FILE", "")
	Setup(false)
	Setup(true)
	if !Initialized() {
		t.Fatal("not initialized")
	}
	if err := Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
