package sweep

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Criteria holds the adaptive stopping bounds for one Monte-Carlo run.
// A zero value for any field means that bound is unlimited. The external
// simulator applies the actual trial loop; this layer only translates the
// bounds into flags and checks they are jointly sensible.
type Criteria struct {
	MinErrorCases int           `json:"min_error_cases"`
	MaxTrials     int64         `json:"max_trials"`
	TimeBudget    time.Duration `json:"time_budget"`
}

// Validate rejects criteria that would make a run's stopping condition
// undefined. All-unbounded criteria are only accepted when the caller
// explicitly allows them (cluster runs bounded by the scheduler's wall
// clock instead).
func (c Criteria) Validate(allowUnbounded bool) error {
	if c.MinErrorCases < 0 {
		return fmt.Errorf("min_error_cases must be >= 0, got %d", c.MinErrorCases)
	}
	if c.MaxTrials < 0 {
		return fmt.Errorf("max_trials must be >= 0, got %d", c.MaxTrials)
	}
	if c.TimeBudget < 0 {
		return fmt.Errorf("time_budget must be >= 0, got %v", c.TimeBudget)
	}
	if c.MinErrorCases == 0 && c.MaxTrials == 0 && c.TimeBudget == 0 && !allowUnbounded {
		return fmt.Errorf("all stopping bounds are unlimited; set at least one bound or allow_unbounded")
	}
	if c.MinErrorCases > 0 && c.MaxTrials > 0 && c.MaxTrials < int64(c.MinErrorCases) {
		return fmt.Errorf("max_trials %d cannot reach min_error_cases %d", c.MaxTrials, c.MinErrorCases)
	}
	return nil
}

// Flags translates the bounds into the simulator's flag set.
func (c Criteria) Flags() []string {
	return []string{
		fmt.Sprintf("-m%d", c.MaxTrials),
		fmt.Sprintf("-e%d", c.MinErrorCases),
		"--time_budget", strconv.Itoa(int(c.TimeBudget / time.Second)),
	}
}

// ParseFlags recovers Criteria from a flag list produced by Flags. Used to
// verify the translation round-trips and by the jobout collector to match
// historical commands against current criteria.
func ParseFlags(flags []string) (Criteria, error) {
	var c Criteria
	for i := 0; i < len(flags); i++ {
		f := flags[i]
		switch {
		case strings.HasPrefix(f, "-m"):
			v, err := strconv.ParseInt(f[2:], 10, 64)
			if err != nil {
				return Criteria{}, fmt.Errorf("parsing max trials flag %q: %w", f, err)
			}
			c.MaxTrials = v
		case strings.HasPrefix(f, "-e"):
			v, err := strconv.Atoi(f[2:])
			if err != nil {
				return Criteria{}, fmt.Errorf("parsing min error cases flag %q: %w", f, err)
			}
			c.MinErrorCases = v
		case f == "--time_budget":
			if i+1 >= len(flags) {
				return Criteria{}, fmt.Errorf("--time_budget missing value")
			}
			secs, err := strconv.Atoi(flags[i+1])
			if err != nil {
				return Criteria{}, fmt.Errorf("parsing time budget %q: %w", flags[i+1], err)
			}
			c.TimeBudget = time.Duration(secs) * time.Second
			i++
		}
	}
	return c, nil
}
