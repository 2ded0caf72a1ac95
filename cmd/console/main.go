// Package main is the terminal console for cooperative administrators and
// residents.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"osiedle/internal/console"
	"osiedle/internal/gateway"
	"osiedle/internal/schema"
	"osiedle/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	stateDir, err := stateDirPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot resolve state directory: %v\n", err)
		os.Exit(1)
	}

	// Logs go to a file so structured output never interleaves with the
	// interactive prompt.
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		OutputPaths: []string{filepath.Join(stateDir, "console.log")},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	baseURL := getEnv("COOP_API_BASE_URL", "http://localhost:8000")
	client := gateway.New(baseURL)
	sessions := console.NewSessionStore(filepath.Join(stateDir, "session.json"))
	controller := console.NewController(client, sessions)

	ctx := logger.WithLogger(context.Background(), log)
	if err := controller.Restore(ctx); err != nil {
		fmt.Println("Nie udało się przywrócić sesji:", err)
	}

	app := &app{controller: controller, out: os.Stdout}
	app.printWelcome()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		app.printNotifications()
		fmt.Fprint(app.out, app.prompt())
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		app.dispatch(ctx, line)
	}
}

// app holds the REPL rendering state around the controller.
type app struct {
	controller *console.Controller
	out        *os.File
	draft      *console.Form
}

func (a *app) prompt() string {
	sess := a.controller.Session()
	if sess == nil {
		return "osiedle> "
	}
	if a.draft != nil {
		return fmt.Sprintf("osiedle[%s:form]> ", a.controller.Router.ActiveView())
	}
	return fmt.Sprintf("osiedle[%s]> ", a.controller.Router.ActiveView())
}

func (a *app) printWelcome() {
	fmt.Fprintln(a.out, "Spółdzielnia mieszkaniowa. Wpisz 'help' aby zobaczyć polecenia.")
}

func (a *app) printNotifications() {
	for _, n := range a.controller.Notifier.Active() {
		prefix := "OK"
		if n.Level == console.NotifyError {
			prefix = "BŁĄD"
		}
		fmt.Fprintf(a.out, "[%s] %s\n", prefix, n.Message)
	}
}

func (a *app) dispatch(ctx context.Context, line string) {
	args := strings.Fields(line)
	cmd := args[0]

	if a.draft != nil {
		a.dispatchForm(ctx, cmd, args, line)
		return
	}

	switch cmd {
	case "help":
		a.printHelp()
	case "login":
		a.login(ctx, args)
	case "logout":
		a.controller.Logout()
		fmt.Fprintln(a.out, "Wylogowano.")
	case "open":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "Użycie: open <widok>")
			return
		}
		if err := a.controller.Navigate(ctx, args[1]); err == nil {
			a.printRecords()
		}
	case "list":
		if err := a.controller.Reload(ctx); err == nil {
			a.printRecords()
		}
	case "search":
		term := strings.TrimSpace(strings.TrimPrefix(line, "search"))
		a.controller.SearchInput(term)
		fmt.Fprintln(a.out, "Szukam:", term)
	case "sort":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "Użycie: sort <kolumna>")
			return
		}
		a.controller.ToggleSort(args[1])
		a.printRecords()
	case "select":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "Użycie: select <id>")
			return
		}
		a.controller.Selection.Toggle(args[1])
		fmt.Fprintf(a.out, "Zaznaczone: %d\n", a.controller.Selection.Count())
	case "select-all":
		a.controller.Selection.SelectAll(a.visibleIDs())
		fmt.Fprintf(a.out, "Zaznaczone: %d\n", a.controller.Selection.Count())
	case "add":
		a.draft = a.controller.BeginAdd()
		a.printForm()
	case "edit":
		a.edit(args)
	case "del":
		a.deleteOne(ctx, args)
	case "bulk-del":
		_ = a.controller.BulkDeleteSelected(ctx)
	case "summary":
		a.showSummary(ctx)
	case "view":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "Użycie: view <nazwa>")
			return
		}
		rows, err := a.controller.ViewRecords(ctx, args[1])
		if err != nil {
			return
		}
		a.printTable(rows)
	case "increase-fees":
		percent := 0.0
		if len(args) > 1 {
			p, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				fmt.Fprintln(a.out, "Użycie: increase-fees [procent]")
				return
			}
			percent = p
		}
		if err := a.controller.IncreaseFees(ctx, percent); err == nil {
			a.printRecords()
		}
	case "count":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "Użycie: count <tabela>")
			return
		}
		count, err := a.controller.CountRecords(ctx, args[1])
		if err != nil {
			return
		}
		fmt.Fprintf(a.out, "%s: %d rekordów\n", args[1], count)
	case "fees":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "Użycie: fees <id_mieszkania>")
			return
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			fmt.Fprintln(a.out, "Użycie: fees <id_mieszkania>")
			return
		}
		total, err := a.controller.ApartmentFees(ctx, id)
		if err != nil {
			return
		}
		fmt.Fprintf(a.out, "Suma opłat mieszkania %d: %.2f PLN\n", id, total)
	case "audit":
		rows, err := a.controller.AuditLogs(ctx)
		if err != nil {
			return
		}
		a.printTable(rows)
	case "repair":
		description := strings.TrimSpace(strings.TrimPrefix(line, "repair"))
		if err := a.controller.SubmitRepair(ctx, description); err != nil {
			return
		}
	default:
		fmt.Fprintln(a.out, "Nieznane polecenie. Wpisz 'help'.")
	}
}

// dispatchForm handles input while a draft form is open.
func (a *app) dispatchForm(ctx context.Context, cmd string, args []string, line string) {
	switch cmd {
	case "set":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "Użycie: set <pole> <wartość>")
			return
		}
		value := strings.TrimSpace(strings.TrimPrefix(line, "set "+args[1]))
		a.draft.Set(args[1], value)
		a.printForm()
	case "save":
		if err := a.controller.SaveForm(ctx, a.draft); err != nil {
			// Failed saves keep the draft open for correction.
			return
		}
		a.draft = nil
		a.printRecords()
	case "cancel":
		a.draft = nil
		fmt.Fprintln(a.out, "Anulowano.")
	default:
		fmt.Fprintln(a.out, "W formularzu: set <pole> <wartość> | save | cancel")
	}
}

func (a *app) login(ctx context.Context, args []string) {
	if len(args) == 4 && args[1] == "admin" {
		if err := a.controller.LoginAdmin(ctx, args[2], args[3]); err != nil {
			fmt.Fprintln(a.out, "Logowanie nieudane:", err)
			return
		}
		a.printRecords()
		return
	}
	if len(args) == 4 && args[1] == "resident" {
		if err := a.controller.LoginResident(ctx, args[2], args[3]); err != nil {
			fmt.Fprintln(a.out, "Logowanie nieudane:", err)
			return
		}
		a.printRecords()
		return
	}
	fmt.Fprintln(a.out, "Użycie: login admin <login> <hasło> | login resident <email> <numer>")
}

func (a *app) edit(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Użycie: edit <id>")
		return
	}
	record := a.findByID(args[1])
	if record == nil {
		fmt.Fprintln(a.out, "Nie znaleziono rekordu:", args[1])
		return
	}
	form, err := a.controller.BeginEdit(record)
	if err != nil {
		return
	}
	a.draft = form
	a.printForm()
}

func (a *app) deleteOne(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Użycie: del <id>")
		return
	}
	record := a.findByID(args[1])
	if record == nil {
		fmt.Fprintln(a.out, "Nie znaleziono rekordu:", args[1])
		return
	}
	fmt.Fprint(a.out, "Usunąć rekord? [t/N] ")
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	confirmed := strings.TrimSpace(strings.ToLower(answer)) == "t"
	_ = a.controller.DeleteRecord(ctx, record, confirmed)
}

func (a *app) findByID(id string) *schema.Record {
	for _, r := range a.controller.Records() {
		if key, ok := r.PrimaryKey(); ok && r.StringValue(key) == id {
			return r
		}
	}
	return nil
}

func (a *app) visibleIDs() []string {
	records := a.controller.Records()
	ids := make([]string, 0, len(records))
	for _, r := range records {
		if key, ok := r.PrimaryKey(); ok {
			ids = append(ids, r.StringValue(key))
		}
	}
	return ids
}

func (a *app) showSummary(ctx context.Context) {
	summary, err := a.controller.Summary(ctx)
	if err != nil {
		return
	}
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(a.out, "%s: %s\n", k, summary[k])
	}
}

func (a *app) printRecords() {
	a.printTable(a.controller.Records())
	if summary := a.controller.ResidentSummary(); summary != nil && a.controller.Router.ActiveView() == "moje-dane" {
		fmt.Fprintf(a.out, "Suma opłat: %.2f PLN | naprawy: %d | spotkania: %d | umowy: %d\n",
			summary.FeesTotal, len(summary.Repairs), len(summary.Meetings), len(summary.Contracts))
	}
}

func (a *app) printTable(records []*schema.Record) {
	if len(records) == 0 {
		fmt.Fprintln(a.out, "(brak danych)")
		return
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	keys := records[0].Keys()
	header := make([]string, 0, len(keys)+1)
	header = append(header, "")
	header = append(header, keys...)
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, r := range records {
		row := make([]string, 0, len(keys)+1)
		mark := " "
		if key, ok := r.PrimaryKey(); ok && a.controller.Selection.Has(r.StringValue(key)) {
			mark = "*"
		}
		row = append(row, mark)
		for _, k := range keys {
			row = append(row, r.StringValue(k))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

func (a *app) printForm() {
	fmt.Fprintf(a.out, "Formularz (%s):\n", a.controller.Router.ActiveView())
	for _, field := range a.draft.Fields() {
		marker := " "
		if a.draft.IsRequired(field) {
			marker = "*"
		}
		suffix := ""
		if a.draft.IsReadOnly(field) {
			suffix = " (tylko do odczytu)"
		}
		if a.draft.Kind(field) == console.KindDropdown && a.controller.RefData() != nil {
			options := a.controller.RefData().Options(field)
			if len(options) > 0 {
				suffix = " [" + strings.Join(options, ", ") + "]"
			}
		}
		fmt.Fprintf(a.out, "  %s%s = %s%s\n", marker, field, a.draft.Value(field), suffix)
	}
	fmt.Fprintln(a.out, "Polecenia: set <pole> <wartość> | save | cancel")
}

func (a *app) printHelp() {
	help := `Polecenia:
  login admin <login> <hasło>      zaloguj jako administrator
  login resident <email> <numer>   zaloguj jako mieszkaniec
  open <widok>                     przełącz widok (np. budynek, oplata, moje-dane)
  list                             odśwież i wyświetl bieżący widok
  search <fraza>                   szukaj w bieżącej tabeli
  sort <kolumna>                   sortuj (drugi raz odwraca kierunek)
  select <id> | select-all         zaznaczanie rekordów (administrator)
  add | edit <id> | del <id>       operacje na rekordach
  bulk-del                         usuń zaznaczone
  summary                          raport zbiorczy (administrator)
  view <nazwa>                     widok złączeniowy (np. naprawy-status)
  increase-fees [procent]          podwyżka cen usług (administrator)
  count <tabela>                   liczba rekordów tabeli
  fees <id_mieszkania>             suma opłat mieszkania
  audit                            dziennik zmian członków
  repair <opis>                    zgłoś naprawę (mieszkaniec)
  logout | quit`
	fmt.Fprintln(a.out, help)
}

func stateDirPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".osiedle")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
