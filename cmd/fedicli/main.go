// fedicli is a small terminal client exercising the SDK end to end: cached
// timeline reads, account lookup with relationship join, and a live stream
// tail merging into the same cache.
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fedikit/fedicache/client"
	"github.com/fedikit/fedicache/entities"
	"github.com/fedikit/fedicache/internal/config"
	"github.com/fedikit/fedicache/query"
	"github.com/fedikit/fedicache/store"
	"github.com/fedikit/fedicache/streaming"
)

var debug bool

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

type app struct {
	cfg    *config.Config
	client *client.Client
	cache  *query.Cache
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.Init()
	return &app{
		cfg:    cfg,
		client: client.New(cfg.InstanceURL, cfg.AccessToken, client.WithUserAgent("fedicli")),
		cache:  query.NewCache(store.New()),
	}, nil
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fedicli",
		Short: "fedicli reads fediverse timelines through the fedicache SDK",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.InitLogger()
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				os.Setenv("FEDICACHE_DEBUG", "true")
				log.Debug().Msg("debug logging enabled")
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(newTimelineCmd(), newAccountCmd(), newTailCmd())
	return rootCmd
}

func newTimelineCmd() *cobra.Command {
	var pages int
	var local bool
	cmd := &cobra.Command{
		Use:   "timeline [home|public]",
		Short: "Print a timeline, following next cursors",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.client.Close()

			which := "home"
			if len(args) > 0 {
				which = args[0]
			}
			fetch := func(ctx context.Context, cur *entities.Cursor) (entities.Page[*entities.Status], error) {
				if which == "public" {
					return a.client.Timelines.Public(ctx, local, cur)
				}
				return a.client.Timelines.Home(ctx, cur)
			}

			ctx := cmd.Context()
			q := query.NewInfinite(a.cache, query.Key("timelines", which), entities.TypeStatus, fetch)
			if err := q.FetchInitial(ctx); err != nil {
				return err
			}
			for i := 1; i < pages && q.HasNextPage(); i++ {
				if err := q.FetchNextPage(ctx); err != nil {
					return err
				}
			}
			for _, st := range q.Entities() {
				printStatus(a.cache, st)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to fetch")
	cmd.Flags().BoolVar(&local, "local", false, "restrict the public timeline to this instance")
	return cmd
}

func newAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "account <acct>",
		Short: "Look up an account by handle and show the relationship",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.client.Close()

			ctx := cmd.Context()
			acct := args[0]
			acc, err := query.LookupEntity(ctx, a.cache, entities.TypeAccount,
				query.Key("accounts", "lookup", acct),
				func(e *entities.Account) bool { return e.Acct == acct },
				func(ctx context.Context) (*entities.Account, error) {
					return a.client.Accounts.Lookup(ctx, acct)
				})
			if err != nil {
				return err
			}

			joined, err := query.AccountsWithRelationships(ctx, a.cache, []string{acc.ID},
				func(ctx context.Context, ids []string) ([]*entities.Relationship, error) {
					return a.client.Accounts.Relationships(ctx, ids)
				})
			if err != nil {
				return err
			}
			for _, aw := range joined {
				fmt.Printf("@%s (%s)\n  followers=%d following=%d statuses=%d\n",
					aw.Account.Acct, aw.Account.DisplayName,
					aw.Account.FollowersCount, aw.Account.FollowingCount, aw.Account.StatusesCount)
				if aw.Relationship != nil {
					fmt.Printf("  following=%v followed_by=%v\n", aw.Relationship.Following, aw.Relationship.FollowedBy)
				}
			}
			return nil
		},
	}
}

func newTailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tail [channel]",
		Short: "Tail a streaming channel, merging events into the cache",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.client.Close()

			channel := "public"
			if len(args) > 0 {
				channel = args[0]
			}

			scfg, err := streaming.LoadConfig()
			if err != nil {
				return err
			}
			if scfg.StreamingURL == "" {
				scfg.StreamingURL = a.cfg.StreamingURL
			}
			if scfg.AccessToken == "" {
				scfg.AccessToken = a.cfg.AccessToken
			}

			listKey := query.Key("timelines", channel)
			feed := query.NewInfinite(a.cache, listKey, entities.TypeStatus,
				func(ctx context.Context, cur *entities.Cursor) (entities.Page[*entities.Status], error) {
					return a.client.Timelines.Public(ctx, false, cur)
				})

			merge := streaming.NewMerge(a.cache)
			merge.BindFeed(channel, listKey)
			defer merge.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info().Str("channel", channel).Msg("tailing stream, ctrl-c to quit")
			go func() {
				err := streaming.Resubscribe(ctx, func(ctx context.Context) (*streaming.Channel, error) {
					return streaming.Subscribe(ctx, scfg, merge, channel, url.Values{})
				})
				if err != nil && ctx.Err() == nil {
					log.Error().Err(err).Msg("stream ended")
				}
			}()

			<-ctx.Done()
			for _, st := range feed.Entities() {
				printStatus(a.cache, st)
			}
			return nil
		},
	}
}

func printStatus(c *query.Cache, st *entities.Status) {
	if st.Deleted {
		fmt.Printf("%s  [deleted]\n", st.ID)
		return
	}
	author := st.AccountID
	if acc, ok := query.GetCached[*entities.Account](c, entities.TypeAccount, st.AccountID); ok {
		author = "@" + acc.Acct
	}
	content := strings.TrimSpace(st.Content)
	if len(content) > 120 {
		content = content[:120] + "…"
	}
	fmt.Printf("%s  %s  %s\n", st.ID, author, content)
}
