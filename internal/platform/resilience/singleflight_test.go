package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_CollapsesConcurrentCalls(t *testing.T) {
	var g SingleFlight
	var executions atomic.Int32

	const callers = 24
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(callers)

	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err, _ := g.Do("v3:/matches/5154199", func() (any, error) {
				executions.Add(1)
				time.Sleep(20 * time.Millisecond)
				return "payload", nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
			if got, _ := v.(string); got != "payload" {
				t.Errorf("unexpected shared value: %v", v)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := executions.Load(); got != 1 {
		t.Fatalf("expected one execution, got %d", got)
	}
}

func TestSingleFlight_SequentialCallsRunSeparately(t *testing.T) {
	var g SingleFlight
	var executions atomic.Int32

	for i := 0; i < 3; i++ {
		_, err, shared := g.Do("v2:/areas", func() (any, error) {
			executions.Add(1)
			return nil, nil
		})
		if err != nil {
			t.Fatalf("singleflight call failed: %v", err)
		}
		if shared {
			t.Fatalf("sequential call %d reported a shared result", i)
		}
	}

	if got := executions.Load(); got != 3 {
		t.Fatalf("expected three executions, got %d", got)
	}
}
