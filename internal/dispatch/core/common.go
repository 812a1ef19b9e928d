package core

const (
	MaxConcurrentAPICalls = 40
)

var requestLimiter = make(chan struct{}, MaxConcurrentAPICalls)

// RunWithRateLimitedConcurrency executes fn while holding a slot in the
// shared semaphore, bounding fan-out across all in-flight flows. The slot
// is released even if fn panics; the panic is re-raised for the caller's
// recover.
func RunWithRateLimitedConcurrency(fn func()) {
	requestLimiter <- struct{}{}
	defer func() {
		<-requestLimiter
		if r := recover(); r != nil {
			panic(r)
		}
	}()

	fn()
}
