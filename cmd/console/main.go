// Command console is the terminal administration console for the catalog
// module: it lists the configured catalogs, renders their records and runs
// the create / per-field edit / delete workflows against the REST backend.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	"smartorder/internal/catalog"
	"smartorder/internal/config"
	"smartorder/internal/gateway"
	"smartorder/internal/notify"
	"smartorder/pkg/logger"
)

func main() {
	cfg := config.LoadWithPath("config.json")

	log, err := logger.New(logger.Config{Level: "warn", Development: cfg.LogDev})
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	reg, err := catalog.LoadRegistry(cfg.CatalogsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "catálogos: %v\n", err)
		os.Exit(1)
	}

	gw, err := gateway.New(gateway.Config{
		BaseURL:    cfg.APIBaseURL,
		CSRFCookie: cfg.CSRFCookie,
		OnSessionExpired: func(msg string) {
			// the SPA navigated to the root path here; the console's
			// equivalent is to drop the session and leave
			fmt.Fprintf(os.Stderr, "\nsesión expirada: %s\n", msg)
			os.Exit(1)
		},
		Log: log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "gateway: %v\n", err)
		os.Exit(1)
	}

	toasts := notify.New(notify.DefaultTTL)
	defer toasts.Close()
	toasts.OnShow(func(m notify.Message) {
		fmt.Printf("  [%s] %s — %s\n", m.Severity, m.Title, m.Text)
	})

	svc := catalog.NewService(gw, toasts, log)
	ctx := context.Background()

	if session := os.Getenv("SMARTORDER_SESSION"); session != "" {
		gw.SetCookie(cfg.SessionCookie, session)
	} else if err := login(ctx, gw, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "login: %v\n", err)
		os.Exit(1)
	}

	runLoop(ctx, svc, reg)
}

func login(ctx context.Context, gw *gateway.Client, cfg config.Config) error {
	_, err := gw.Request(ctx, http.MethodPost, "/sesion", map[string]string{
		"usuario": cfg.DevUser,
		"clave":   cfg.DevPass,
	})
	return err
}

// session is the console's view state: the active catalog and its last
// fetched collection. A reload replaces records and schema wholesale.
type session struct {
	desc    catalog.Descriptor
	records []catalog.Record
	schema  catalog.Schema
	active  bool
}

func runLoop(ctx context.Context, svc *catalog.Service, reg *catalog.Registry) {
	in := bufio.NewScanner(os.Stdin)
	var cur session

	fmt.Println("smartorder · consola de catálogos — escriba 'ayuda' para ver los comandos")
	for {
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch strings.ToLower(cmd) {
		case "ayuda", "help":
			printHelp()

		case "tablas":
			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			for _, d := range reg.Tables() {
				fmt.Fprintf(w, "%s\t%s\n", d.Table, d.Label)
			}
			w.Flush()

		case "usar":
			d, ok := reg.Get(arg)
			if !ok {
				fmt.Printf("catálogo desconocido: %q\n", arg)
				continue
			}
			records, sch, err := svc.Load(ctx, d)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			// switching tables drops any pending edit state with the session
			cur = session{desc: d, records: records, schema: sch, active: true}
			fmt.Printf("%s: %d registro(s), identificador %q\n", d.Label, len(records), sch.IDField)

		case "listar":
			if !requireTable(cur) {
				continue
			}
			rows := catalog.Filter(cur.records, cur.schema, arg)
			catalog.SortByIdentifier(rows, cur.schema)
			renderTable(rows, cur.schema)

		case "nuevo":
			if !requireTable(cur) {
				continue
			}
			input := make(map[string]string, len(cur.schema.FormFields))
			for _, f := range cur.schema.FormFields {
				input[f] = prompt(in, fmt.Sprintf("  %s: ", catalog.PrettyLabel(f)))
			}
			if out, err := svc.Create(ctx, cur.desc, cur.schema, input); err == nil {
				cur.records, cur.schema = out.Records, out.Schema
			}

		case "editar":
			if !requireTable(cur) {
				continue
			}
			rec := findByID(cur, arg)
			if rec == nil {
				fmt.Printf("registro %q no encontrado\n", arg)
				continue
			}
			edit := catalog.NewPendingEdit(cur.schema, rec)
			for _, f := range cur.schema.FormFields {
				// empty keeps the current value, "-" clears the field
				switch v := prompt(in, fmt.Sprintf("  %s [%s]: ", catalog.PrettyLabel(f), edit.Values[f])); v {
				case "":
				case "-":
					edit.Set(f, "")
				default:
					edit.Set(f, v)
				}
			}
			if out, err := svc.Save(ctx, cur.desc, cur.schema, edit); err == nil && out.Reloaded {
				cur.records, cur.schema = out.Records, out.Schema
			}

		case "borrar":
			if !requireTable(cur) {
				continue
			}
			rec := findByID(cur, arg)
			if rec == nil {
				fmt.Printf("registro %q no encontrado\n", arg)
				continue
			}
			out := svc.Delete(ctx, cur.desc, cur.schema, rec, func(q string) bool {
				return strings.EqualFold(prompt(in, q+" [s/N] "), "s")
			})
			if out.Reloaded {
				cur.records, cur.schema = out.Records, out.Schema
			}

		case "salir", "exit", "quit":
			return

		default:
			fmt.Printf("comando desconocido: %q\n", cmd)
		}
	}
}

func printHelp() {
	fmt.Println(`  tablas              lista los catálogos disponibles
  usar <tabla>        activa un catálogo
  listar [filtro]     muestra los registros (filtro por subcadena)
  nuevo               crea un registro
  editar <id>         edita un registro campo por campo ('-' vacía el campo)
  borrar <id>         elimina un registro (con confirmación)
  salir               termina la sesión`)
}

func requireTable(cur session) bool {
	if !cur.active {
		fmt.Println("ningún catálogo activo — use 'usar <tabla>'")
		return false
	}
	return true
}

func findByID(cur session, id string) catalog.Record {
	if cur.schema.IDField == "" || strings.TrimSpace(id) == "" {
		return nil
	}
	for _, rec := range cur.records {
		if catalog.CellString(rec[cur.schema.IDField]) == id {
			return rec
		}
	}
	return nil
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

func renderTable(rows []catalog.Record, sch catalog.Schema) {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	headers := make([]string, 0, len(sch.AllFields))
	for _, f := range sch.AllFields {
		headers = append(headers, catalog.PrettyLabel(f))
	}
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, rec := range rows {
		cells := make([]string, 0, len(sch.AllFields))
		for _, f := range sch.AllFields {
			cells = append(cells, catalog.CellString(rec[f]))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
	fmt.Printf("  %d registro(s)\n", len(rows))
}
