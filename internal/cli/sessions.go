package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/lifecycle"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
)

// sessionsCmd builds the operations every kind shares. Kind-specific
// operations are added by the caller.
func sessionsCmd[K lifecycle.Kind](a *app, engine func() *lifecycle.Engine[K]) *cobra.Command {
	var k K
	singular := k.Descriptor().Singular
	owner := "<" + singular + "-id>"
	ownerArg := cobra.MatchAll(cobra.ExactArgs(1), ids(singular+" id"))
	refArg := cobra.MatchAll(cobra.ExactArgs(2), ids(singular+" id", "session id"))

	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session", "s"},
		Short:   "Manage " + singular + " agent sessions",
	}

	list := &cobra.Command{
		Use:     "list " + owner,
		Aliases: []string{"ls"},
		Short:   "List the sessions of a " + singular,
		Args:    ownerArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := engine().FetchSessions(cmd.Context(), types.ResourceID(args[0]))
			if err != nil {
				return err
			}
			return a.out.Sessions(sessions)
		},
	}

	create := &cobra.Command{
		Use:     "create " + owner,
		Aliases: []string{"start", "new"},
		Short:   "Start a new session",
		Args:    ownerArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := engine().CreateSession(cmd.Context(), types.ResourceID(args[0]))
			if err != nil {
				return err
			}
			return a.out.Session(s)
		},
	}

	stop := &cobra.Command{
		Use:   "stop " + owner + " <session-id>",
		Short: "Stop a running session",
		Args:  refArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := engine().StopSession(cmd.Context(), refArgs(args))
			if err != nil {
				return err
			}
			return a.out.Session(s)
		},
	}

	resume := &cobra.Command{
		Use:   "resume " + owner + " <session-id>",
		Short: "Resume a stopped session",
		Args:  refArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := engine().ResumeSession(cmd.Context(), refArgs(args))
			if err != nil {
				return err
			}
			return a.out.Session(s)
		},
	}

	cmd.AddCommand(list, create, stop, resume, stopAllCmd(a, engine, owner, ownerArg), watchCmd(a, engine, owner, ownerArg))
	return cmd
}

// stopAllCmd stops every active session of a resource concurrently
func stopAllCmd[K lifecycle.Kind](a *app, engine func() *lifecycle.Engine[K], owner string, posArgs cobra.PositionalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "stop-all " + owner,
		Short: "Stop every active session",
		Args:  posArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := engine()
			rid := types.ResourceID(args[0])
			sessions, err := e.FetchSessions(cmd.Context(), rid)
			if err != nil {
				return err
			}

			var (
				mu      sync.Mutex
				stopped []types.Session
				errs    []error
			)
			d := lifecycle.NewDispatcher()
			for _, ref := range activeRefs(rid, sessions) {
				lifecycle.Go(d, cmd.Context(),
					func(ctx context.Context) (types.Session, error) {
						return e.StopSession(ctx, ref)
					},
					func(s types.Session, err error) {
						mu.Lock()
						defer mu.Unlock()
						if err != nil {
							errs = append(errs, err)
							return
						}
						stopped = append(stopped, s)
					})
			}
			d.Wait()

			// Print from the store so the output reflects every applied outcome.
			if err := a.out.Sessions(e.Store().Sessions(rid)); err != nil {
				return err
			}
			if len(errs) > 0 {
				return errors.Join(errs...)
			}
			a.log.Sugar().Debugf("stopped %d sessions of %s", len(stopped), rid)
			return nil
		},
	}
}

// watchCmd polls a resource's sessions and prints the store after each fetch
func watchCmd[K lifecycle.Kind](a *app, engine func() *lifecycle.Engine[K], owner string, posArgs cobra.PositionalArgs) *cobra.Command {
	var (
		interval time.Duration
		count    int
	)

	cmd := &cobra.Command{
		Use:   "watch " + owner,
		Short: "Poll sessions and print each change",
		Args:  posArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("interval must be positive")
			}
			e := engine()
			rid := types.ResourceID(args[0])

			var last string
			unsubscribe := e.Store().Subscribe(func(st session.State) {
				if st.Loading {
					return
				}
				line := summary(st, rid)
				if line == last {
					return
				}
				last = line
				if a.flags.json {
					_ = a.out.JSON(watchEvent{
						Time:     time.Now().UTC(),
						Sessions: st.Sessions[rid],
						Error:    st.Error,
					})
					return
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", time.Now().Format(time.TimeOnly), line)
			})
			defer unsubscribe()

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for i := 0; count <= 0 || i < count; i++ {
				if i > 0 {
					select {
					case <-cmd.Context().Done():
						return nil
					case <-ticker.C:
					}
				}
				// Failures land in the store and are printed by the subscriber.
				_, _ = e.FetchSessions(cmd.Context(), rid)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "poll interval")
	cmd.Flags().IntVar(&count, "count", 0, "stop after this many polls (0 polls until interrupted)")
	return cmd
}

// activeRefs addresses the active sessions under rid. The payload's own
// owner field may be absent, so rid is authoritative.
func activeRefs(rid types.ResourceID, sessions []types.Session) []types.SessionRef {
	refs := make([]types.SessionRef, 0, len(sessions))
	for _, s := range sessions {
		if s.Active() {
			refs = append(refs, types.SessionRef{ResourceID: rid, SessionID: s.ID})
		}
	}
	return refs
}

type watchEvent struct {
	Time     time.Time       `json:"time"`
	Sessions []types.Session `json:"sessions"`
	Error    string          `json:"error,omitempty"`
}

func summary(st session.State, rid types.ResourceID) string {
	if st.Error != "" {
		return "error: " + st.Error
	}
	sessions := st.Sessions[rid]
	active := 0
	for _, s := range sessions {
		if s.Active() {
			active++
		}
	}
	line := fmt.Sprintf("%d sessions, %d active", len(sessions), active)
	for _, s := range sessions {
		line += fmt.Sprintf(" | %s %s v%d", s.ID, s.Status, s.Version)
	}
	return line
}
