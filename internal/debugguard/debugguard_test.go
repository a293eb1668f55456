package debugguard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckAllowsRepeatedSameGoroutineAccess(t *testing.T) {
	var g Guard
	assert.NotPanics(t, func() {
		g.Check()
		g.Check()
		g.Check()
	})
}

func TestCheckPanicsOnCrossGoroutineAccess(t *testing.T) {
	var g Guard
	g.Check()

	var wg sync.WaitGroup
	wg.Add(1)
	panicked := false
	go func() {
		defer wg.Done()
		defer func() {
			if recover() != nil {
				panicked = true
			}
		}()
		g.Check()
	}()
	wg.Wait()
	assert.True(t, panicked, "a second goroutine touching the same Guard must panic")
}
