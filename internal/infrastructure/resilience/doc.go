/*
Package resilience provides the circuit breaker guarding calls to the
platform API.

# States

- Closed: normal operation, requests pass through
- Open: platform considered down, requests fail fast with ErrCircuitOpen
- Half-Open: a limited number of probes decide whether to close again

	Closed --[ReadyToTrip]-> Open --[Timeout]-> Half-Open --[MaxRequests successes]-> Closed
	                                               |
	                                           [failure]
	                                               v
	                                             Open

# Usage

	breaker := resilience.New("platform-api", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool { return !isServerFault(err) },
	})

	resp, err := resilience.Call(breaker, func() (*resty.Response, error) {
		return req.Execute(method, url)
	})
*/
package resilience
