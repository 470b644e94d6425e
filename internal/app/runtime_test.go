package app

import (
	"testing"

	_ "github.com/quotedesk/quotedesk/testing"
)

func TestGuardImportEnablesTestMode(t *testing.T) {
	RefreshTestMode()
	if !InTestMode() {
		t.Fatal("expected test mode to be enabled by the guard import")
	}
}
