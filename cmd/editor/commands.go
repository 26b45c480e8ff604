package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"resumeEditor/internal/editor"
	"resumeEditor/internal/resume"
	"resumeEditor/internal/syncer"
)

var newCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Create a resume with the default sections",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		created, err := a.api.CreateResume(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), field("created", created.ID))
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your resumes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a := appFrom(cmd)
		q := resume.ListQuery{}
		q.Page, _ = cmd.Flags().GetInt("page")
		q.Limit, _ = cmd.Flags().GetInt("limit")
		q.Search, _ = cmd.Flags().GetString("search")
		q.SortBy, _ = cmd.Flags().GetString("sort")
		q.SortOrder, _ = cmd.Flags().GetString("order")

		list, err := a.api.ListResumes(cmd.Context(), q)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderResumeList(list))
		return nil
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session <resume-id>",
	Short: "Apply JSON-line actions from stdin or a file to a resume",
	Long: `session reads one command per line. A line starting with '{' is an
action such as {"type":"updateTitle","payload":{"title":"CV"}}; the words
undo, redo, save, status, offline and online control the session. Pending
changes are flushed when the input ends.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		ctx := cmd.Context()

		detail, err := a.api.GetResume(ctx, args[0])
		if err != nil {
			return err
		}

		in := cmd.InOrStdin()
		if path, _ := cmd.Flags().GetString("input"); path != "" {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer f.Close()
			in = f
		}

		ed := editor.New(editor.WithHistoryLimit(a.cfg.HistoryLimit), editor.WithLogger(a.logger))
		s := newSession(ed, a.api, cmd.OutOrStdout(),
			[]syncer.AutoSaveOption{syncer.WithSaveDelay(a.cfg.AutoSaveDelay), syncer.WithSaveLogger(a.logger)},
			[]syncer.RemoteOption{syncer.WithSyncInterval(a.cfg.SyncThrottle), syncer.WithSyncLogger(a.logger)},
		)
		if offline, _ := cmd.Flags().GetBool("offline"); offline {
			s.remote.SetOnline(false)
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderResume(&detail.Resume))
		return s.run(ctx, &detail.Resume, in)
	},
}

var shareCmd = &cobra.Command{
	Use:   "share <resume-id>",
	Short: "Create, list or deactivate share links",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		links := syncer.NewShareLinks(a.api, nil, a.logger)
		out := cmd.OutOrStdout()

		if shareID, _ := cmd.Flags().GetString("deactivate"); shareID != "" {
			if err := links.Deactivate(cmd.Context(), args[0], shareID); err != nil {
				return err
			}
			fmt.Fprintln(out, field("deactivated", shareID))
			return nil
		}

		if list, _ := cmd.Flags().GetBool("list"); list {
			if err := links.Load(cmd.Context(), args[0]); err != nil {
				return err
			}
			for _, l := range links.State(args[0]).Links {
				state := "active"
				if !l.IsActive {
					state = "inactive"
				}
				fmt.Fprintf(out, "%s %s %s\n", l.URL, mutedStyle.Render(state), mutedStyle.Render(fmt.Sprintf("%d views", l.ViewCount)))
			}
			fmt.Fprintln(out, field("link state", string(links.LinkState(args[0]))))
			return nil
		}

		opts := resume.ShareOptions{}
		if days, _ := cmd.Flags().GetInt("expires"); days > 0 {
			opts.ExpiresInDays = &days
		}
		opts.Password, _ = cmd.Flags().GetString("password")
		link, err := links.Create(cmd.Context(), args[0], opts)
		if err != nil {
			if links.State(args[0]).SlugExhausted {
				return fmt.Errorf("%w, try again", err)
			}
			return err
		}
		fmt.Fprintln(out, field("share url", link.URL))
		return nil
	},
}

var openCmd = &cobra.Command{
	Use:   "open <slug>",
	Short: "Resolve a public share link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		password, _ := cmd.Flags().GetString("password")
		view, err := a.api.ResolvePublic(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, renderResume(view.Resume))
		fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%d views", view.ShareLink.ViewCount)))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <resume-id>",
	Short: "Queue a JSON export, or list finished exports with --list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		out := cmd.OutOrStdout()
		if list, _ := cmd.Flags().GetBool("list"); list {
			files, err := a.api.ListExports(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("no exports yet"))
			}
			for _, f := range files {
				fmt.Fprintf(out, "%s %s\n  %s\n", f.LastModified.Format(time.DateTime), mutedStyle.Render(fmt.Sprintf("%d bytes", f.Size)), f.URL)
			}
			return nil
		}

		job, err := a.api.ExportResume(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, field("export queued", job.TaskID))
		return nil
	},
}

func init() {
	listCmd.Flags().Int("page", 1, "page number")
	listCmd.Flags().Int("limit", resume.DefaultPageSize, "page size")
	listCmd.Flags().String("search", "", "filter by title")
	listCmd.Flags().String("sort", resume.SortUpdatedAt, "updatedAt, createdAt or title")
	listCmd.Flags().String("order", "desc", "asc or desc")

	sessionCmd.Flags().StringP("input", "i", "", "read commands from a file instead of stdin")
	sessionCmd.Flags().Bool("offline", false, "start with remote sync offline")

	shareCmd.Flags().Int("expires", 0, "expire after this many days")
	shareCmd.Flags().String("password", "", "protect the link with a password")
	shareCmd.Flags().Bool("list", false, "list existing links instead of creating one")
	shareCmd.Flags().String("deactivate", "", "deactivate the share link with this id")

	openCmd.Flags().String("password", "", "password for protected links")

	exportCmd.Flags().Bool("list", false, "list finished exports with download links")
}
