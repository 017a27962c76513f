package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kodestorel007/fun-kanban/internal/actions"
	"github.com/Kodestorel007/fun-kanban/internal/api"
	"github.com/Kodestorel007/fun-kanban/internal/board"
	"github.com/Kodestorel007/fun-kanban/internal/colors"
	"github.com/Kodestorel007/fun-kanban/internal/config"
	"github.com/Kodestorel007/fun-kanban/internal/poll"
	"github.com/Kodestorel007/fun-kanban/internal/session"
	"github.com/Kodestorel007/fun-kanban/internal/ui"
)

var (
	flagAPI       string
	flagJSON      bool
	flagVerbose   bool
	flagWorkspace string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "funkanban",
		Short: "Work a Fun Kanban board from the terminal",
		Long: `Funkanban talks to a Fun Kanban backend: log in once, then browse
boards, drag tasks between columns, cycle priorities and manage
workspaces, projects and notifications without leaving the shell.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagAPI, "api", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&flagWorkspace, "workspace", "w", "", "Workspace name or id")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(registerCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(passwordCmd())
	rootCmd.AddCommand(featuresCmd())
	rootCmd.AddCommand(boardCmd())
	rootCmd.AddCommand(moveCmd())
	rootCmd.AddCommand(priorityCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(workspaceCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(notifyCmd())
	rootCmd.AddCommand(bridgeCmd())
	rootCmd.AddCommand(adminCmd())

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			fmt.Fprintf(os.Stderr, "%s Session expired — run %s to sign in again.\n",
				ui.Red("✗"), ui.Bold("funkanban login"))
		} else {
			fmt.Fprintf(os.Stderr, "%s %v\n", ui.Red("✗"), err)
		}
		os.Exit(1)
	}
}

func setupLogging() {
	var logger *zap.Logger
	if flagVerbose {
		logger, _ = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
		cfg.OutputPaths = []string{"stderr"}
		logger, _ = cfg.Build()
	}
	if logger != nil {
		zap.ReplaceGlobals(logger)
	}
}

// newClient wires config, session store and gateway client together.
func newClient() (*api.Client, *session.Store, *config.Config, error) {
	cfgPath, err := config.DefaultPath()
	if err != nil {
		return nil, nil, nil, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if flagAPI != "" {
		cfg.APIBaseURL = flagAPI
	}

	sessPath, err := session.DefaultPath()
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := session.Open(sessPath)
	if err != nil {
		return nil, nil, nil, err
	}

	return api.New(strings.TrimSuffix(cfg.APIBaseURL, "/"), store), store, cfg, nil
}

// signalContext is cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx, cancel
}

// resolveWorkspace picks the workspace named by --workspace (name or id),
// falling back to the first workspace in display order.
func resolveWorkspace(ctx context.Context, c *api.Client) (*api.Workspace, error) {
	ws, err := c.Workspaces(ctx)
	if err != nil {
		return nil, err
	}
	if len(ws) == 0 {
		return nil, fmt.Errorf("no workspaces — create one with %s", ui.Bold("funkanban workspace add"))
	}
	if flagWorkspace == "" {
		return &ws[0], nil
	}
	for i := range ws {
		if ws[i].ID.String() == flagWorkspace || strings.EqualFold(ws[i].Name, flagWorkspace) {
			return &ws[i], nil
		}
	}
	return nil, fmt.Errorf("workspace %q not found", flagWorkspace)
}

func prompt(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		return "", fmt.Errorf("read %s: %w", label, sc.Err())
	}
	return strings.TrimSpace(sc.Text()), nil
}

// ─── Auth commands ─────────────────────────────────────

func loginCmd() *cobra.Command {
	var flagEmail, flagPassword string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, _, err := newClient()
			if err != nil {
				return err
			}

			email := flagEmail
			if email == "" {
				if email, err = prompt("Email"); err != nil {
					return err
				}
			}
			password := flagPassword
			if password == "" {
				if password, err = prompt("Password"); err != nil {
					return err
				}
			}
			if email == "" || password == "" {
				return fmt.Errorf("email and password are required")
			}

			ctx, cancel := signalContext()
			defer cancel()

			if _, err := client.Login(ctx, email, password); err != nil {
				return err
			}
			user, err := client.Me(ctx)
			if err != nil {
				return err
			}
			if err := store.SetUser(user); err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(user)
			}
			ui.PrintLogo()
			name := user.DisplayName
			if name == "" {
				name = user.Email
			}
			fmt.Printf("%s Signed in as %s\n", ui.Green("✓"), ui.Bold(name))
			return nil
		},
	}

	cmd.Flags().StringVar(&flagEmail, "email", "", "Account email")
	cmd.Flags().StringVar(&flagPassword, "password", "", "Account password (prompted if omitted)")

	return cmd
}

func registerCmd() *cobra.Command {
	var flagEmail, flagPassword string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, _, err := newClient()
			if err != nil {
				return err
			}

			email := flagEmail
			if email == "" {
				if email, err = prompt("Email"); err != nil {
					return err
				}
			}
			password := flagPassword
			if password == "" {
				if password, err = prompt("Password"); err != nil {
					return err
				}
			}
			if !strings.Contains(email, "@") {
				return fmt.Errorf("invalid email %q", email)
			}
			if len(password) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}

			ctx, cancel := signalContext()
			defer cancel()

			if _, err := client.Register(ctx, email, password); err != nil {
				return err
			}
			user, err := client.Me(ctx)
			if err != nil {
				return err
			}
			if err := store.SetUser(user); err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(user)
			}
			fmt.Printf("%s Account created — signed in as %s\n", ui.Green("✓"), ui.Bold(user.Email))
			return nil
		},
	}

	cmd.Flags().StringVar(&flagEmail, "email", "", "Account email")
	cmd.Flags().StringVar(&flagPassword, "password", "", "Account password (prompted if omitted)")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and erase the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, _, err := newClient()
			if err != nil {
				return err
			}
			if !store.LoggedIn() {
				fmt.Println("Not signed in.")
				return nil
			}

			ctx, cancel := signalContext()
			defer cancel()

			// Backend revocation is best-effort; local erase always happens.
			if err := client.Logout(ctx); err != nil {
				zap.L().Debug("backend logout failed", zap.Error(err))
			}
			fmt.Printf("%s Signed out.\n", ui.Green("✓"))
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	var flagRemote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, cfg, err := newClient()
			if err != nil {
				return err
			}
			if !store.LoggedIn() {
				return fmt.Errorf("not signed in — run %s", ui.Bold("funkanban login"))
			}

			user := store.Identity()
			if flagRemote || user == nil {
				ctx, cancel := signalContext()
				defer cancel()
				if user, err = client.Me(ctx); err != nil {
					return err
				}
				store.SetUser(user)
			}

			if flagJSON {
				return outputJSON(user)
			}

			name := user.DisplayName
			if name == "" {
				name = user.Email
			}
			fmt.Printf("%s %s %s\n", ui.BoldCyan(ui.Initials(name)), ui.Bold(name), ui.Dim("<"+user.Email+">"))
			if user.IsAdmin {
				fmt.Printf("   %s\n", ui.BoldMagenta("admin"))
			}
			fmt.Printf("   API: %s\n", ui.Dim(cfg.APIBaseURL))

			access, _ := store.Tokens()
			if info, err := session.PeekToken(access); err == nil && !info.ExpiresAt.IsZero() {
				fmt.Printf("   Token expires %s\n", ui.Dim(info.ExpiresAt.Local().Format(time.RFC1123)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagRemote, "remote", false, "Refetch the identity from the backend")

	return cmd
}

func passwordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Password recovery",
	}

	forgot := &cobra.Command{
		Use:   "forgot <email>",
		Short: "Request a password reset email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			if err := client.ForgotPassword(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("%s If the account exists, a reset email is on its way.\n", ui.Green("✓"))
			return nil
		},
	}

	reset := &cobra.Command{
		Use:   "reset <token>",
		Short: "Redeem a reset token for a new password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			newPassword, err := prompt("New password")
			if err != nil {
				return err
			}
			if len(newPassword) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}
			ctx, cancel := signalContext()
			defer cancel()
			if err := client.ResetPassword(ctx, args[0], newPassword); err != nil {
				return err
			}
			fmt.Printf("%s Password changed — sign in with %s.\n", ui.Green("✓"), ui.Bold("funkanban login"))
			return nil
		},
	}

	cmd.AddCommand(forgot)
	cmd.AddCommand(reset)
	return cmd
}

func featuresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "features",
		Short: "Show the backend's feature flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			raw, err := client.Features(ctx)
			if err != nil {
				return err
			}
			var pretty map[string]any
			if err := json.Unmarshal(raw, &pretty); err != nil {
				fmt.Println(string(raw))
				return nil
			}
			return outputJSON(pretty)
		},
	}
}

// ─── Board ─────────────────────────────────────────────

func boardCmd() *cobra.Command {
	var (
		flagProject  string
		flagSort     string
		flagDesc     bool
		flagLock     bool
		flagArchived bool
		flagDetails  bool
		flagWatch    bool
	)

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Render the kanban board",
		Long: `Fetches the workspace's tasks and renders the four columns. --project
narrows to one project ("none" shows unassigned tasks), --sort orders
each column by due date or last update, and --lock keeps tasks grouped
by project while sorting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagSort != "" && flagSort != board.SortDueDate && flagSort != board.SortUpdatedAt {
				return fmt.Errorf("invalid sort field %q (want %s or %s)",
					flagSort, board.SortDueDate, board.SortUpdatedAt)
			}

			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			sortState := board.SortState{Field: flagSort, Desc: flagDesc}
			filter := flagProject
			if filter == "" {
				filter = board.FilterAll
			}

			render := func() error {
				ws, err := resolveWorkspace(ctx, client)
				if err != nil {
					return err
				}
				tasks, err := client.Tasks(ctx, ws.ID)
				if err != nil {
					return err
				}
				projects, err := client.Projects(ctx, ws.ID)
				if err != nil {
					return err
				}

				// The filter takes project names too; the deriver compares ids.
				filterID := filter
				for _, p := range projects {
					if strings.EqualFold(p.Name, filter) {
						filterID = p.ID.String()
						break
					}
				}

				view := board.Derive(tasks, filterID, sortState, flagLock)

				if flagJSON {
					return outputJSON(view)
				}

				unread := 0
				if n, err := client.NotificationCount(ctx); err == nil {
					unread = n.UnreadCount
				}

				header := fmt.Sprintf("%s %s", ui.BoldCyan("Fun Kanban:"), ui.Bold(ws.Name))
				if filter != board.FilterAll {
					header += " " + ui.Dim("(project: "+filter+")")
				}
				if unread > 0 {
					header += fmt.Sprintf("  🔔 %s", ui.BoldYellow(unread))
				}
				fmt.Println(header)
				fmt.Println()

				ui.RenderBoard(os.Stdout, view, ui.BoardOptions{
					Projects:         projects,
					ShowArchived:     flagArchived,
					ShowDescriptions: flagDetails,
				})
				return nil
			}

			if !flagWatch {
				return render()
			}

			// Watch mode refreshes on the notification poll cadence.
			for {
				fmt.Print("\033[2J\033[H") // clear screen
				if err := render(); err != nil {
					return err
				}
				select {
				case <-time.After(poll.NotifyInterval):
				case <-ctx.Done():
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVarP(&flagProject, "project", "p", "", `Project filter: name, id, "all" or "none"`)
	cmd.Flags().StringVar(&flagSort, "sort", "", "Sort columns by due_date or updated_at")
	cmd.Flags().BoolVar(&flagDesc, "desc", false, "Sort descending")
	cmd.Flags().BoolVar(&flagLock, "lock", false, "Group by project while sorting")
	cmd.Flags().BoolVar(&flagArchived, "archived", false, "Expand the archived column")
	cmd.Flags().BoolVar(&flagDetails, "details", false, "Show task descriptions")
	cmd.Flags().BoolVar(&flagWatch, "watch", false, "Redraw every 30s")

	return cmd
}

func moveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <task-id> <target>",
		Short: "Move a task to another column",
		Long: `Target is a column (todo, in_progress, done, archived) or another
task's id, in which case the task lands in that task's column. Moving
onto the current column is a no-op.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			ws, err := resolveWorkspace(ctx, client)
			if err != nil {
				return err
			}
			tasks, err := client.Tasks(ctx, ws.ID)
			if err != nil {
				return err
			}

			taskID, overID := args[0], args[1]
			updated, moved, err := actions.Move(ctx, client, tasks, taskID, overID)
			if err != nil {
				return err
			}
			if !moved {
				fmt.Printf("%s Nothing to do.\n", ui.Dim("‣"))
				return nil
			}

			for _, t := range updated {
				if t.ID.String() == taskID {
					fmt.Printf("%s Moved %s to %s\n", ui.Green("✓"), ui.Bold(t.Title), ui.BoldCyan(t.Status))
					break
				}
			}
			return nil
		},
	}
	return cmd
}

func priorityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "priority <task-id> [low|medium|high]",
		Short: "Cycle or set a task's priority",
		Long:  `Without a level, the priority advances one step: low → medium → high → low.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			ws, err := resolveWorkspace(ctx, client)
			if err != nil {
				return err
			}
			tasks, err := client.Tasks(ctx, ws.ID)
			if err != nil {
				return err
			}

			taskID := args[0]
			var updated []api.Task
			if len(args) == 2 {
				level := args[1]
				if level != api.PriorityLow && level != api.PriorityMedium && level != api.PriorityHigh {
					return fmt.Errorf("invalid priority %q", level)
				}
				updated, err = actions.SetPriority(ctx, client, tasks, taskID, level)
			} else {
				updated, err = actions.CyclePriority(ctx, client, tasks, taskID)
			}
			if err != nil {
				return err
			}

			for _, t := range updated {
				if t.ID.String() == taskID {
					fmt.Printf("%s %s is now %s priority\n",
						ui.PriorityDot(t.Priority), ui.Bold(t.Title), ui.BoldCyan(t.Priority))
					break
				}
			}
			return nil
		},
	}
	return cmd
}

// ─── Tasks ─────────────────────────────────────────────

func taskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create and manage tasks",
	}

	cmd.AddCommand(taskAddCmd())
	cmd.AddCommand(taskShowCmd())
	cmd.AddCommand(taskEditCmd())
	cmd.AddCommand(taskRmCmd())
	cmd.AddCommand(taskCommentCmd())

	return cmd
}

func taskAddCmd() *cobra.Command {
	var (
		flagProject  string
		flagDesc     string
		flagPriority string
		flagStatus   string
		flagDue      string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(args[0])
			if title == "" {
				return fmt.Errorf("title must not be empty")
			}
			if flagStatus != "" && !board.ValidStatus(flagStatus) {
				return fmt.Errorf("invalid status %q", flagStatus)
			}

			var due *api.Date
			if flagDue != "" {
				t, err := time.Parse("2006-01-02", flagDue)
				if err != nil {
					return fmt.Errorf("invalid due date %q (want YYYY-MM-DD)", flagDue)
				}
				due = &api.Date{Time: t}
			}

			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			ws, err := resolveWorkspace(ctx, client)
			if err != nil {
				return err
			}

			var projectID api.ID
			if flagProject != "" {
				projects, err := client.Projects(ctx, ws.ID)
				if err != nil {
					return err
				}
				for _, p := range projects {
					if p.ID.String() == flagProject || strings.EqualFold(p.Name, flagProject) {
						projectID = p.ID
						break
					}
				}
				if projectID == "" {
					return fmt.Errorf("project %q not found in %s", flagProject, ws.Name)
				}
			}

			created, err := client.CreateTask(ctx, api.NewTask{
				WorkspaceID: ws.ID,
				ProjectID:   projectID,
				Title:       title,
				Description: flagDesc,
				Status:      flagStatus,
				Priority:    flagPriority,
				DueDate:     due,
			})
			if err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(created)
			}
			fmt.Printf("%s Created %s %s\n", ui.Green("✓"), ui.Bold(created.Title), ui.Dim("("+created.ID.String()+")"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&flagProject, "project", "p", "", "Project name or id")
	cmd.Flags().StringVar(&flagDesc, "desc", "", "Description")
	cmd.Flags().StringVar(&flagPriority, "priority", "", "low, medium or high")
	cmd.Flags().StringVar(&flagStatus, "status", "", "Starting column (default todo)")
	cmd.Flags().StringVar(&flagDue, "due", "", "Due date (YYYY-MM-DD)")

	return cmd
}

func taskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task with its comment trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			ws, err := resolveWorkspace(ctx, client)
			if err != nil {
				return err
			}
			tasks, err := client.Tasks(ctx, ws.ID)
			if err != nil {
				return err
			}

			var task *api.Task
			for i := range tasks {
				if tasks[i].ID.String() == args[0] {
					task = &tasks[i]
					break
				}
			}
			if task == nil {
				return fmt.Errorf("task %s not found in %s", args[0], ws.Name)
			}

			if flagJSON {
				return outputJSON(task)
			}

			fmt.Printf("%s %s %s\n", ui.PriorityDot(task.Priority), ui.Bold(task.Title), ui.Dim("("+task.ID.String()+")"))
			fmt.Printf("   Status: %s", ui.BoldCyan(task.Status))
			if b := ui.Badge(*task); b != "" {
				fmt.Printf("  %s", b)
			}
			fmt.Println()
			if task.ProjectName != "" {
				fmt.Printf("   Project: %s\n", ui.Swatch(task.ProjectColor, task.ProjectName))
			}
			if task.DueDate != nil && !task.DueDate.IsZero() {
				fmt.Printf("   Due: %s\n", task.DueDate.Format("Jan 2 2006"))
			}
			if task.AssignedToName != "" {
				fmt.Printf("   Assigned: %s\n", task.AssignedToName)
			}
			if task.Description != "" {
				fmt.Printf("\n%s\n", task.Description)
			}
			if len(task.Updates) > 0 {
				fmt.Printf("\n%s\n", ui.Bold("Updates"))
				for _, u := range task.Updates {
					who := u.UserName
					if who == "" {
						who = "someone"
					}
					fmt.Printf("  %s %s %s\n", ui.BoldCyan(who), ui.Dim(ui.RelTime(u.CreatedAt)), u.Content)
				}
			}
			return nil
		},
	}
}

func taskEditCmd() *cobra.Command {
	var (
		flagTitle   string
		flagDesc    string
		flagDue     string
		flagBlocked string
		flagHold    string
	)

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Update task fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch api.TaskPatch

			if cmd.Flags().Changed("title") {
				if strings.TrimSpace(flagTitle) == "" {
					return fmt.Errorf("title must not be empty")
				}
				patch.Title = &flagTitle
			}
			if cmd.Flags().Changed("desc") {
				patch.Description = &flagDesc
			}
			if cmd.Flags().Changed("due") {
				d := &api.Date{}
				if flagDue != "" {
					t, err := time.Parse("2006-01-02", flagDue)
					if err != nil {
						return fmt.Errorf("invalid due date %q (want YYYY-MM-DD)", flagDue)
					}
					d.Time = t
				}
				patch.DueDate = d
			}
			if cmd.Flags().Changed("blocked") {
				blocked := flagBlocked != ""
				patch.Blocked = &blocked
				patch.BlockReason = &flagBlocked
			}
			if cmd.Flags().Changed("hold") {
				onHold := flagHold != ""
				patch.OnHold = &onHold
				patch.HoldReason = &flagHold
			}
			if patch == (api.TaskPatch{}) {
				return fmt.Errorf("nothing to change")
			}

			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			updated, err := client.UpdateTask(ctx, api.ID(args[0]), patch)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(updated)
			}
			fmt.Printf("%s Updated %s\n", ui.Green("✓"), ui.Bold(updated.Title))
			return nil
		},
	}

	cmd.Flags().StringVar(&flagTitle, "title", "", "New title")
	cmd.Flags().StringVar(&flagDesc, "desc", "", "New description")
	cmd.Flags().StringVar(&flagDue, "due", "", "New due date (YYYY-MM-DD, empty clears)")
	cmd.Flags().StringVar(&flagBlocked, "blocked", "", "Block with a reason (empty unblocks)")
	cmd.Flags().StringVar(&flagHold, "hold", "", "Put on hold with a reason (empty releases)")

	return cmd
}

func taskRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			if err := client.DeleteTask(ctx, api.ID(args[0])); err != nil {
				return err
			}
			fmt.Printf("%s Deleted task %s\n", ui.Green("✓"), ui.Bold(args[0]))
			return nil
		},
	}
}

func taskCommentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <task-id> <text>",
		Short: "Append a comment to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(args[1])
			if text == "" {
				return fmt.Errorf("comment must not be empty")
			}
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			if _, err := client.AddTaskUpdate(ctx, api.ID(args[0]), text); err != nil {
				return err
			}
			fmt.Printf("%s Comment added.\n", ui.Green("✓"))
			return nil
		},
	}
}

// ─── Workspaces ────────────────────────────────────────

func workspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workspace",
		Aliases: []string{"ws"},
		Short:   "Manage workspaces",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List workspaces in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			ws, err := client.Workspaces(ctx)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(ws)
			}
			for i, w := range ws {
				fmt.Printf("%2d. %s %s %s\n", i+1, ui.Swatch(w.Color, w.Name),
					ui.Dim(fmt.Sprintf("(%d tasks, %d members)", w.TaskCount, w.MemberCount)),
					ui.Dim(w.ID.String()))
			}
			return nil
		},
	}

	var flagColor, flagDesc string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("name must not be empty")
			}
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			w, err := client.CreateWorkspace(ctx, name, flagDesc, colors.NormalizeForStorage(flagColor))
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(w)
			}
			fmt.Printf("%s Created workspace %s\n", ui.Green("✓"), ui.Swatch(w.Color, w.Name))
			return nil
		},
	}
	add.Flags().StringVar(&flagColor, "color", "", "Accent color (hex, defaults to the backend's)")
	add.Flags().StringVar(&flagDesc, "desc", "", "Description")

	rm := &cobra.Command{
		Use:   "rm <name-or-id>",
		Short: "Delete a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			flagWorkspace = args[0]
			w, err := resolveWorkspace(ctx, client)
			if err != nil {
				return err
			}
			if err := client.DeleteWorkspace(ctx, w.ID); err != nil {
				return err
			}
			fmt.Printf("%s Deleted workspace %s\n", ui.Green("✓"), ui.Bold(w.Name))
			return nil
		},
	}

	reorder := &cobra.Command{
		Use:   "reorder <from> <to>",
		Short: "Move a workspace to a new position (1-based)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[0])
			}
			to, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[1])
			}

			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			ws, err := client.Workspaces(ctx)
			if err != nil {
				return err
			}
			reordered, err := actions.Reorder(ctx, client, ws, from-1, to-1)
			if err != nil {
				// The reloaded order is authoritative; show it before failing.
				for i, w := range reordered {
					fmt.Printf("%2d. %s\n", i+1, w.Name)
				}
				return err
			}
			for i, w := range reordered {
				fmt.Printf("%2d. %s\n", i+1, ui.Swatch(w.Color, w.Name))
			}
			return nil
		},
	}

	members := &cobra.Command{
		Use:   "members <name-or-id>",
		Short: "List workspace members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			flagWorkspace = args[0]
			w, err := resolveWorkspace(ctx, client)
			if err != nil {
				return err
			}
			ms, err := client.WorkspaceMembers(ctx, w.ID)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(ms)
			}
			for _, m := range ms {
				name := m.UserName
				if name == "" {
					name = m.UserEmail
				}
				fmt.Printf("  %s %s %s\n", ui.BoldCyan(ui.Initials(name)), ui.Bold(name), ui.Dim(m.Role))
			}
			return nil
		},
	}

	cmd.AddCommand(list)
	cmd.AddCommand(add)
	cmd.AddCommand(rm)
	cmd.AddCommand(reorder)
	cmd.AddCommand(members)

	return cmd
}

// ─── Projects ──────────────────────────────────────────

func projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects within a workspace",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			ws, err := resolveWorkspace(ctx, client)
			if err != nil {
				return err
			}
			ps, err := client.Projects(ctx, ws.ID)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(ps)
			}
			for _, p := range ps {
				fmt.Printf("  %s %s\n", ui.Swatch(p.Color, p.Name), ui.Dim(p.ID.String()))
			}
			return nil
		},
	}

	var flagColor string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("name must not be empty")
			}
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			ws, err := resolveWorkspace(ctx, client)
			if err != nil {
				return err
			}
			p, err := client.CreateProject(ctx, ws.ID, name, colors.NormalizeForStorage(flagColor))
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(p)
			}
			fmt.Printf("%s Created project %s in %s\n", ui.Green("✓"), ui.Swatch(p.Color, p.Name), ui.Bold(ws.Name))
			return nil
		},
	}
	add.Flags().StringVar(&flagColor, "color", "", "Accent color (hex, defaults to the backend's)")

	rm := &cobra.Command{
		Use:   "rm <name-or-id>",
		Short: "Delete a project (its tasks stay, unassigned)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			ws, err := resolveWorkspace(ctx, client)
			if err != nil {
				return err
			}
			ps, err := client.Projects(ctx, ws.ID)
			if err != nil {
				return err
			}
			for _, p := range ps {
				if p.ID.String() == args[0] || strings.EqualFold(p.Name, args[0]) {
					if err := client.DeleteProject(ctx, p.ID); err != nil {
						return err
					}
					fmt.Printf("%s Deleted project %s\n", ui.Green("✓"), ui.Bold(p.Name))
					return nil
				}
			}
			return fmt.Errorf("project %q not found in %s", args[0], ws.Name)
		},
	}

	colorsCmd := &cobra.Command{
		Use:   "colors",
		Short: "Show the accent color palette",
		RunE: func(cmd *cobra.Command, args []string) error {
			for i, p := range colors.Pairs {
				fmt.Printf("  %s  %s / %s\n",
					ui.Swatch(p.Dark, fmt.Sprintf("%-8s", paletteName(i))),
					ui.Dim(p.Dark), ui.Dim(p.Light))
			}
			return nil
		},
	}

	cmd.AddCommand(list)
	cmd.AddCommand(add)
	cmd.AddCommand(rm)
	cmd.AddCommand(colorsCmd)

	return cmd
}

func paletteName(i int) string {
	names := [...]string{"green", "blue", "purple", "pink", "yellow", "red", "teal", "indigo", "rose"}
	if i < 0 || i >= len(names) {
		return "custom"
	}
	return names[i]
}

// ─── Notifications ─────────────────────────────────────

func notifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Notification inbox",
	}

	count := &cobra.Command{
		Use:   "count",
		Short: "Show the unread badge number",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			n, err := client.NotificationCount(ctx)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(n)
			}
			if n.UnreadCount == 0 {
				fmt.Println("No unread notifications.")
				return nil
			}
			fmt.Printf("🔔 %s unread\n", ui.BoldYellow(n.UnreadCount))
			return nil
		},
	}

	var flagLimit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent notifications grouped by day",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			ns, err := client.Notifications(ctx, flagLimit)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(ns)
			}
			if len(ns) == 0 {
				fmt.Println("Inbox empty.")
				return nil
			}

			groups := ui.GroupNotifications(ns, time.Now())
			printGroup := func(title string, items []api.Notification) {
				if len(items) == 0 {
					return
				}
				fmt.Printf("%s\n", ui.Bold(title))
				for _, n := range items {
					marker := " "
					if n.ReadAt == nil {
						marker = ui.BoldYellow("•")
					}
					fmt.Printf(" %s %s %s %s\n", marker, ui.NotificationIcon(n.Type),
						n.Message, ui.Dim(ui.RelTime(n.CreatedAt)))
				}
				fmt.Println()
			}
			printGroup("Today", groups.Today)
			printGroup("Yesterday", groups.Yesterday)
			printGroup("This week", groups.ThisWeek)
			printGroup("Older", groups.Older)
			return nil
		},
	}
	list.Flags().IntVar(&flagLimit, "limit", 50, "Max notifications to fetch")

	read := &cobra.Command{
		Use:   "read",
		Short: "Mark everything read",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			if err := client.MarkNotificationsRead(ctx); err != nil {
				return err
			}
			fmt.Printf("%s All read.\n", ui.Green("✓"))
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete one notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			if err := client.DeleteNotification(ctx, api.ID(args[0])); err != nil {
				return err
			}
			fmt.Printf("%s Deleted.\n", ui.Green("✓"))
			return nil
		},
	}

	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Purge old read notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			if err := client.CleanupNotifications(ctx); err != nil {
				return err
			}
			fmt.Printf("%s Cleaned up.\n", ui.Green("✓"))
			return nil
		},
	}

	cmd.AddCommand(count)
	cmd.AddCommand(list)
	cmd.AddCommand(read)
	cmd.AddCommand(rm)
	cmd.AddCommand(cleanup)

	return cmd
}

// ─── Bridge ────────────────────────────────────────────

func bridgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Companion bridge connectivity",
	}

	var flagWatch bool
	status := &cobra.Command{
		Use:   "status",
		Short: "Probe the bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, cfg, err := newClient()
			if err != nil {
				return err
			}
			if cfg.BridgeURL == "" {
				return fmt.Errorf("no bridge_url configured")
			}

			ctx, cancel := signalContext()
			defer cancel()

			prober := poll.NewBridgeProber(cfg.BridgeURL, func(s poll.BridgeStatus) {
				fmt.Printf("%s bridge %s %s\n", ui.BridgeIcon(string(s)), ui.Bold(string(s)), ui.Dim(cfg.BridgeURL))
			})
			if flagWatch {
				prober.Run(ctx) // probes every 30s until interrupted
				return nil
			}
			prober.RunOnce(ctx)
			if prober.Status() != poll.BridgeOnline {
				os.Exit(1)
			}
			return nil
		},
	}
	status.Flags().BoolVar(&flagWatch, "watch", false, "Keep probing every 30s")

	ping := &cobra.Command{
		Use:   "ping",
		Short: "Fire the bridge's ping action",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, cfg, err := newClient()
			if err != nil {
				return err
			}
			if cfg.BridgeURL == "" {
				return fmt.Errorf("no bridge_url configured")
			}
			ctx, cancel := signalContext()
			defer cancel()
			prober := poll.NewBridgeProber(cfg.BridgeURL, nil)
			if err := prober.Ping(ctx); err != nil {
				return err
			}
			fmt.Printf("%s Bridge acknowledged.\n", ui.Green("✓"))
			return nil
		},
	}

	cmd.AddCommand(status)
	cmd.AddCommand(ping)

	return cmd
}

// ─── Admin ─────────────────────────────────────────────

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Backend administration (admin accounts only)",
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			s, err := client.AdminStats(ctx)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(s)
			}
			fmt.Printf("%s\n", ui.BoldCyan("Fun Kanban — admin"))
			fmt.Printf("  Users:      %s (%d active)\n", ui.Bold(s.TotalUsers), s.ActiveUsers)
			fmt.Printf("  Workspaces: %s\n", ui.Bold(s.TotalWorkspaces))
			fmt.Printf("  Tasks:      %s\n", ui.Bold(s.TotalTasks))
			for _, col := range board.Columns {
				if n, ok := s.TasksByStatus[col.ID]; ok {
					fmt.Printf("    %s %-12s %d\n", col.Icon, col.Title, n)
				}
			}
			return nil
		},
	}

	users := &cobra.Command{
		Use:   "users",
		Short: "List all accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			us, err := client.AdminUsers(ctx)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(us)
			}
			for _, u := range us {
				badges := ""
				if u.IsAdmin {
					badges += " " + ui.BoldMagenta("admin")
				}
				if !u.IsActive {
					badges += " " + ui.Dim("inactive")
				}
				name := u.DisplayName
				if name == "" {
					name = u.Email
				}
				fmt.Printf("  %s %s %s%s\n", ui.BoldCyan(ui.Initials(name)), ui.Bold(name), ui.Dim("<"+u.Email+">"), badges)
			}
			return nil
		},
	}

	var flagLimit int
	activity := &cobra.Command{
		Use:   "activity",
		Short: "Show the activity log",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			es, err := client.ActivityLog(ctx, flagLimit)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(es)
			}
			for _, e := range es {
				who := e.UserName
				if who == "" {
					who = "system"
				}
				fmt.Printf("  %s %s %s %s\n", ui.Dim(ui.RelTime(e.CreatedAt)),
					ui.BoldCyan(who), e.Action, ui.Dim(e.EntityType+" "+e.EntityID.String()))
			}
			return nil
		},
	}
	activity.Flags().IntVar(&flagLimit, "limit", 50, "Max entries")

	smtp := &cobra.Command{
		Use:   "smtp",
		Short: "Show outbound mail settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			s, err := client.SMTPSettings(ctx)
			if err != nil {
				return err
			}
			s.Password = "" // never print secrets
			return outputJSON(s)
		},
	}

	smtpTest := &cobra.Command{
		Use:   "smtp-test",
		Short: "Send a test email through the configured SMTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			if err := client.TestSMTP(ctx); err != nil {
				return err
			}
			fmt.Printf("%s Test email sent.\n", ui.Green("✓"))
			return nil
		},
	}

	app := &cobra.Command{
		Use:   "app",
		Short: "Show app-level settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			s, err := client.AppSettings(ctx)
			if err != nil {
				return err
			}
			return outputJSON(s)
		},
	}

	resetPw := &cobra.Command{
		Use:   "reset-password <user-id>",
		Short: "Set a new password for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, _, err := newClient()
			if err != nil {
				return err
			}
			newPassword, err := prompt("New password")
			if err != nil {
				return err
			}
			if len(newPassword) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}
			ctx, cancel := signalContext()
			defer cancel()
			if err := client.ResetUserPassword(ctx, api.ID(args[0]), newPassword); err != nil {
				return err
			}
			fmt.Printf("%s Password reset for %s\n", ui.Green("✓"), ui.Bold(args[0]))
			return nil
		},
	}

	cmd.AddCommand(stats)
	cmd.AddCommand(users)
	cmd.AddCommand(activity)
	cmd.AddCommand(smtp)
	cmd.AddCommand(smtpTest)
	cmd.AddCommand(app)
	cmd.AddCommand(resetPw)

	return cmd
}

// ─── Output helpers ────────────────────────────────────

func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
