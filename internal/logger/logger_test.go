package logger

import "testing"

func TestSetLevelIgnoresUnknownValue(t *testing.T) {
	SetLevel("INFO")
	SetLevel("NOT_A_LEVEL")
	if currentLevel != LevelInfo {
		t.Fatalf("expected level to remain INFO, got %v", currentLevel)
	}
}

func TestNamedDoesNotPanic(t *testing.T) {
	c := Named("naming")
	c.Debug("test %d", 1)
	c.Info("test %d", 2)
	c.Warn("test %d", 3)
	c.Error("test %d", 4)
}
