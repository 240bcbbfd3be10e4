package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/wellpulse/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/wellpulse/internal/session"
	"github.com/aryan0dhankhar/wellpulse/pkg/pagination"
)

type cli struct {
	api     *apiClient
	session *session.Manager
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]
	if command == "help" {
		printUsage()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	log := logger.New(os.Stderr, getEnv("WELLPULSE_LOG_LEVEL", "warn"))
	storage, closeStorage, err := openStorage(ctx, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeStorage()
	api := newAPIClient(getAPIURL())
	c := &cli{api: api, session: session.NewManager(storage, api, api, log)}

	switch command {
	case "auth":
		err = c.handleAuth(ctx, args)
	case "employees":
		err = c.handleEmployees(ctx, args)
	case "reports":
		err = c.handleReports(ctx, args)
	case "surveys":
		err = c.handleSurveys(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}

const redisSessionTTL = 7 * 24 * time.Hour

// openStorage keeps the session in redis when WELLPULSE_REDIS_URL is set so
// several machines can share one login, and in the config file otherwise.
func openStorage(ctx context.Context, log *slog.Logger) (session.Storage, func(), error) {
	redisURL := os.Getenv("WELLPULSE_REDIS_URL")
	if redisURL == "" {
		storage, err := session.DefaultFileStorage()
		return storage, func() {}, err
	}
	client, err := redis.NewClient(ctx, redisURL, log)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Warn("failed to close redis", slog.String("error", err.Error()))
		}
	}
	return session.NewRedisStorage(client, sessionID(), redisSessionTTL), closeFn, nil
}

// sessionID names the redis session: WELLPULSE_SESSION, or user@host
func sessionID() string {
	if id := os.Getenv("WELLPULSE_SESSION"); id != "" {
		return id
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return getEnv("USER", "wellpulse") + "@" + host
}

var errNotLoggedIn = errors.New("not logged in, run: wellpulse auth login -email <email> -password <password>")

// restore loads the saved session and hands its token to the API client
func (c *cli) restore(ctx context.Context) error {
	ok, err := c.session.Restore(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errNotLoggedIn
	}
	c.api.token = c.session.Token()
	return nil
}

func (c *cli) handleAuth(ctx context.Context, args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: wellpulse auth <login|logout|who>")
		return nil
	}
	switch args[0] {
	case "login":
		return c.login(ctx, args[1:])
	case "logout":
		return c.logout(ctx)
	case "who":
		return c.whoAmI(ctx)
	default:
		return fmt.Errorf("unknown auth command: %s", args[0])
	}
}

func (c *cli) handleEmployees(ctx context.Context, args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: wellpulse employees <list|import|template|export>")
		return nil
	}
	if args[0] == "template" {
		return c.employeeTemplate(ctx)
	}
	if err := c.restore(ctx); err != nil {
		return err
	}
	switch args[0] {
	case "list":
		return c.listEmployees(ctx, args[1:])
	case "import":
		return c.importEmployees(ctx, args[1:])
	case "export":
		return c.exportEmployees(ctx, args[1:])
	default:
		return fmt.Errorf("unknown employees command: %s", args[0])
	}
}

func (c *cli) handleReports(ctx context.Context, args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: wellpulse reports <list|export>")
		return nil
	}
	if err := c.restore(ctx); err != nil {
		return err
	}
	switch args[0] {
	case "list":
		return c.listReports(ctx)
	case "export":
		return c.exportReport(ctx, args[1:])
	default:
		return fmt.Errorf("unknown reports command: %s", args[0])
	}
}

func (c *cli) handleSurveys(ctx context.Context, args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: wellpulse surveys <list|stats>")
		return nil
	}
	if err := c.restore(ctx); err != nil {
		return err
	}
	switch args[0] {
	case "list":
		return c.listSurveys(ctx)
	case "stats":
		return c.surveyStats(ctx)
	default:
		return fmt.Errorf("unknown surveys command: %s", args[0])
	}
}

// Auth commands
func (c *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	if *email == "" || *password == "" {
		fs.PrintDefaults()
		return errors.New("email and password are required")
	}

	user, err := c.session.Login(ctx, *email, *password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Printf("✓ Logged in as: %s (%s)\n", user.Email, user.Role)
	return nil
}

func (c *cli) logout(ctx context.Context) error {
	if ok, _ := c.session.Restore(ctx); ok {
		c.api.token = c.session.Token()
		if err := c.api.postJSON(ctx, "/auth/logout", nil, nil); err != nil {
			fmt.Fprintf(os.Stderr, "warning: server logout failed: %v\n", err)
		}
	}
	if err := c.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("✓ Logged out")
	return nil
}

func (c *cli) whoAmI(ctx context.Context) error {
	if err := c.restore(ctx); err != nil {
		if errors.Is(err, errNotLoggedIn) {
			fmt.Println("Not logged in")
			return nil
		}
		return err
	}
	u := c.session.User()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", u.Name)
	fmt.Fprintf(w, "Email:\t%s\n", u.Email)
	fmt.Fprintf(w, "Role:\t%s\n", u.Role)
	fmt.Fprintf(w, "Company:\t%s\n", u.CompanyID)
	if u.Sector != "" {
		fmt.Fprintf(w, "Sector:\t%s\n", u.Sector)
	}
	return w.Flush()
}

// Employee commands
func (c *cli) listEmployees(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	company := fs.String("company", "", "company id")
	sector := fs.String("sector", "", "sector name")
	page := fs.Int("page", 1, "page number")
	fs.Parse(args)

	q := url.Values{}
	q.Set("page", strconv.Itoa(*page))
	if *company != "" {
		q.Set("companyId", *company)
	}
	if *sector != "" {
		q.Set("sector", *sector)
	}

	var res pagination.Page[domain.Employee]
	if err := c.api.getJSON(ctx, "/employees?"+q.Encode(), &res); err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSECTOR\tACTIVE")
	for _, e := range res.Data {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", e.ID, e.Name, e.Email, e.Sector, e.IsActive)
	}
	fmt.Fprintf(w, "\npage %d of %d (%d total)\n", res.Page, res.TotalPages, res.Total)
	return w.Flush()
}

func (c *cli) importEmployees(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	company := fs.String("company", "", "company id (defaults to yours)")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return errors.New("usage: wellpulse employees import [-company id] <file.csv>")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	path := "/employees/import"
	if *company != "" {
		path += "?companyId=" + url.QueryEscape(*company)
	}
	var result domain.ImportResult
	if err := c.api.upload(ctx, path, "text/csv", f, &result); err != nil {
		return err
	}
	fmt.Printf("✓ Imported %d employees\n", result.Success)
	for _, e := range result.Errors {
		fmt.Printf("✗ row %d: %s\n", e.Row, e.Error)
	}
	return nil
}

func (c *cli) employeeTemplate(ctx context.Context) error {
	if err := c.restore(ctx); err != nil {
		return err
	}
	data, _, err := c.api.download(ctx, "/employees/template")
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func (c *cli) exportEmployees(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "csv", "csv or xlsx")
	out := fs.String("o", "", "output file (defaults to the server's file name)")
	fs.Parse(args)

	data, name, err := c.api.download(ctx, "/employees/export?format="+url.QueryEscape(*format))
	if err != nil {
		return err
	}
	return writeFile(*out, name, data)
}

// Report commands
func (c *cli) listReports(ctx context.Context) error {
	var res pagination.Page[domain.Report]
	if err := c.api.getJSON(ctx, "/reports", &res); err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tRESPONSES")
	for _, r := range res.Data {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", r.ID, r.Title, r.Status, r.Data.TotalResponses)
	}
	return w.Flush()
}

func (c *cli) exportReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", "", "output file (defaults to the server's file name)")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return errors.New("usage: wellpulse reports export [-o file] <report-id> [csv|pdf]")
	}
	format := "csv"
	if fs.NArg() > 1 {
		format = strings.ToLower(fs.Arg(1))
	}

	data, name, err := c.api.download(ctx, "/reports/"+url.PathEscape(fs.Arg(0))+"/export?format="+url.QueryEscape(format))
	if err != nil {
		return err
	}
	return writeFile(*out, name, data)
}

// Survey commands
func (c *cli) listSurveys(ctx context.Context) error {
	var res pagination.Page[domain.Survey]
	if err := c.api.getJSON(ctx, "/surveys", &res); err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tQUESTIONS\tENDS")
	for _, s := range res.Data {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", s.ID, s.Title, s.Status, len(s.Questions), s.EndDate.Format("2006-01-02"))
	}
	return w.Flush()
}

func (c *cli) surveyStats(ctx context.Context) error {
	var stats domain.SurveyStats
	if err := c.api.getJSON(ctx, "/surveys/stats", &stats); err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total:\t%d\n", stats.Total)
	fmt.Fprintf(w, "Active:\t%d\n", stats.Active)
	fmt.Fprintf(w, "Draft:\t%d\n", stats.Draft)
	fmt.Fprintf(w, "Closed:\t%d\n", stats.Closed)
	return w.Flush()
}

// Helper functions
func getAPIURL() string {
	return getEnv("WELLPULSE_API", "http://localhost:8080/api")
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// writeFile saves data to out, or to the suggested name in the working directory
func writeFile(out, suggested string, data []byte) error {
	if out == "" {
		out = filepath.Base(suggested)
	}
	if out == "" || out == "." || out == "/" {
		out = "export.bin"
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("✓ Saved %s (%d bytes)\n", out, len(data))
	return nil
}

func printUsage() {
	fmt.Print(`WellPulse CLI

Usage:
  wellpulse <command> [options]

Commands:
  auth       Authentication (login, logout, who)
  employees  Employees (list, import, template, export)
  reports    Reports (list, export)
  surveys    Surveys (list, stats)
  help       Show this help message

Environment Variables:
  WELLPULSE_API         API endpoint (default: http://localhost:8080/api)
  WELLPULSE_LOG_LEVEL   Log level for diagnostics on stderr (default: warn)
  WELLPULSE_REDIS_URL   Keep the session in Redis instead of the config file
  WELLPULSE_SESSION     Redis session name (default: $USER@hostname)

Examples:
  wellpulse auth login -email admin@empresa.com -password admin123
  wellpulse employees import -company company-1 funcionarios.csv
  wellpulse employees export -format xlsx
  wellpulse reports export report-1 pdf
  wellpulse surveys stats
`)
}
