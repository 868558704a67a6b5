// Command atlas-demo is a minimal smoke-test harness for the cache: it
// parses a query from a file or stdin, writes a JSON data file into it, and
// prints the resulting read back out. The command-line surface is out of
// scope for the cache itself (spec §1); this exists only so the library can
// be exercised without writing a Go program first.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/helfer/atlas"
	"github.com/helfer/atlas/internal/eventbus"
	"github.com/helfer/atlas/internal/language"
	"github.com/helfer/atlas/internal/otel"
)

const usage = `atlas-demo -query <file> -data <file> [-optimistic]

FLAGS:
  -query <file>       Path to a GraphQL query document ("-" for stdin)
  -data  <file>        Path to a JSON data file matching the query's root
  -root  <id>          Root store key (default "QUERY")
  -optimistic           Route the write to the optimistic index
  -otel.endpoint <addr> OTLP collector endpoint
  -otel.service <name>  OpenTelemetry service name (default: atlas-demo)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("atlas-demo", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	queryPath := fs.String("query", "", "query document path")
	dataPath := fs.String("data", "", "JSON data path")
	rootID := fs.String("root", atlas.RootQuery, "root store key")
	optimistic := fs.Bool("optimistic", false, "write/read optimistically")
	otelEndpoint := fs.String("otel.endpoint", "", "OTLP collector endpoint")
	otelService := fs.String("otel.service", "atlas-demo", "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, usage)
		return err
	}
	if *queryPath == "" || *dataPath == "" {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("-query and -data are required")
	}

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(*otelEndpoint, *otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	queryText, err := readFile(*queryPath)
	if err != nil {
		return fmt.Errorf("read query: %w", err)
	}
	doc, err := language.ParseQuery(queryText)
	if err != nil {
		return fmt.Errorf("parse query: %w", err)
	}

	dataText, err := readFile(*dataPath)
	if err != nil {
		return fmt.Errorf("read data: %w", err)
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(dataText), &data); err != nil {
		return fmt.Errorf("parse data: %w", err)
	}

	store := atlas.NewStore()
	defer store.Close()

	ctx := atlas.Context{RootID: *rootID, IsOptimistic: *optimistic}
	if _, err := store.Write(doc, data, ctx); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	view, ok, err := store.Read(doc, ctx)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if !ok {
		fmt.Println("null")
		return nil
	}
	out, err := view.ToMap()
	if err != nil {
		return fmt.Errorf("project view: %w", err)
	}
	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func readFile(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}
