package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/taurusgroup/dilizium/protocols/dilizium"
)

func benchCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "bench",
		Short: "Measures signing time and rejections over repeated runs",
		RunE:  benchFunc,
	}
	flags := c.Flags()
	addSeedFlags(flags)
	flags.Int(RunsKey, 10, "Number of signatures to produce")
	flags.String(MessageKey, "Hello Estonia", "Message to sign")
	flags.IntSlice(ParallelSessionsKey, nil, "Parallel sessions per attempt to measure, the parameter set's value otherwise")
	return c
}

// stats accumulates timings and rejection counts.
type stats struct {
	runs       int
	total      time.Duration
	min, max   time.Duration
	rejections int
}

func (s *stats) add(d time.Duration, rejections int) {
	if s.runs == 0 || d < s.min {
		s.min = d
	}
	if d > s.max {
		s.max = d
	}
	s.runs++
	s.total += d
	s.rejections += rejections
}

func (s *stats) String() string {
	if s.runs == 0 {
		return "no runs"
	}
	return fmt.Sprintf("runs: %d\nmean: %s\nmin: %s\nmax: %s\nmean rejections: %.2f",
		s.runs, s.total/time.Duration(s.runs), s.min, s.max, float64(s.rejections)/float64(s.runs))
}

func benchFunc(c *cobra.Command, _ []string) error {
	env, err := parseEnvironment(c)
	if err != nil {
		return err
	}
	defer env.close()

	flags := c.Flags()
	if err = fillSeeds(flags); err != nil {
		return err
	}
	k1, k2, err := env.keys(flags)
	if err != nil {
		return err
	}
	runs, err := flags.GetInt(RunsKey)
	if err != nil {
		return err
	}
	if runs <= 0 {
		return fmt.Errorf("--%s must be positive", RunsKey)
	}
	message, err := flags.GetString(MessageKey)
	if err != nil {
		return err
	}
	sessions, err := flags.GetIntSlice(ParallelSessionsKey)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		sessions = []int{env.params.ParallelSessions}
	}

	for _, p := range sessions {
		pp := *env.params
		pp.ParallelSessions = p
		if err = pp.Validate(); err != nil {
			return err
		}

		var s stats
		for i := 0; i < runs; i++ {
			start := time.Now()
			result, err := dilizium.SignLocal(c.Context(), k1, k2, []byte(message),
				dilizium.WithParams(&pp),
				dilizium.WithPool(env.pool),
				dilizium.WithLogger(env.log),
			)
			if err != nil {
				return err
			}
			s.add(time.Since(start), result.Signature.Rejections)
			env.log.Debug().Int("run", i).Int("parallel_sessions", p).Int("rejections", result.Signature.Rejections).Msg("bench")
		}
		fmt.Fprintf(c.OutOrStdout(), "parallel sessions: %d\n%s\n", p, s.String())
	}
	return nil
}
