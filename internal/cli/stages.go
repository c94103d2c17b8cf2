package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-costdw/internal/datagen"
	"github.com/pgEdge/pgedge-costdw/internal/db"
	"github.com/pgEdge/pgedge-costdw/internal/ddlgen"
	"github.com/pgEdge/pgedge-costdw/internal/documents"
	"github.com/pgEdge/pgedge-costdw/internal/ingest"
	"github.com/pgEdge/pgedge-costdw/internal/integrate"
	"github.com/pgEdge/pgedge-costdw/internal/logging"
	"github.com/pgEdge/pgedge-costdw/internal/schema"
	"github.com/pgEdge/pgedge-costdw/internal/warehouse"
)

var (
	relationalEnvFile string
	relationalPobFile string

	documentsDryRun bool

	integrateFromFiles bool
	integrateOutput    string

	warehouseInput     string
	warehouseDate      string
	warehouseBatchSize int

	ddlTable  string
	ddlSource string
	ddlDryRun bool

	generateCountries int
	generateSeed      uint64
	generateOutput    string
)

var relationalCmd = &cobra.Command{
	Use:   "relational",
	Short: "Load the flat tables from the CSV sources",
	Long: `Read pais_envejecimiento.csv and pais_poblacion.csv, report and clean
their missing values (text becomes 'Desconocido', numbers take the column
mean), recreate the flat tables and load them.`,
	RunE: runRelational,
}

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Load the big-mac and tourist cost JSON files into MongoDB",
	Long: `Read the JSON files, unify their structure, clean missing values and
replace the big_mac_index and costos_turisticos collections. Indexes are
created on pais and continente and check queries are run afterwards.

Example:
  pgedge-costdw documents --mongo-uri mongodb://localhost:27017 --data-dir ./datos`,
	RunE: runDocuments,
}

var integrateCmd = &cobra.Command{
	Use:   "integrate",
	Short: "Merge the flat tables and document collections into datos_integrados.csv",
	Long: `Extract both flat tables and both document collections, normalize
country names, outer-merge the four sources, consolidate and clean the
result and write it as CSV.

With --from-files the documents are read from the JSON files instead of
MongoDB.`,
	RunE: runIntegrate,
}

var warehouseCmd = &cobra.Command{
	Use:   "warehouse",
	Short: "Load integrated records into the star schema",
	Long: `Load dim_costos, one dim_tiempo row for the load date, dim_pais and
fact_economicos from an integrated CSV in a single transaction, then
verify counts and referential integrity. The star schema is created when
it does not exist.`,
	RunE: runWarehouse,
}

var ddlCmd = &cobra.Command{
	Use:   "ddl",
	Short: "Create a MySQL table from a CSV file and load it",
	Long: `Infer a column type (INT, FLOAT, BOOLEAN, DATETIME or VARCHAR(255))
for every column of a CSV file, create the table in MySQL if it does not
exist and append the rows.

Example:
  pgedge-costdw ddl --mysql-dsn "root:secret@tcp(localhost:3306)/lab07_bdd2"`,
	RunE: runDDL,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write synthetic integrated records for demos and tests",
	RunE:  runGenerate,
}

func init() {
	relationalCmd.Flags().StringVar(&relationalEnvFile, "envejecimiento", ingest.EnvejecimientoFile,
		"pais_envejecimiento CSV file, relative to the data directory")
	relationalCmd.Flags().StringVar(&relationalPobFile, "poblacion", ingest.PoblacionFile,
		"pais_poblacion CSV file, relative to the data directory")

	documentsCmd.Flags().BoolVar(&documentsDryRun, "dry-run", false,
		"analyze and unify the files without connecting to MongoDB")

	integrateCmd.Flags().BoolVar(&integrateFromFiles, "from-files", false,
		"read documents from the JSON files instead of MongoDB")
	integrateCmd.Flags().StringVar(&integrateOutput, "output", ingest.IntegratedFile,
		"integrated CSV file, relative to the data directory")

	warehouseCmd.Flags().StringVar(&warehouseInput, "input", ingest.IntegratedFile,
		"integrated CSV file, relative to the data directory")
	warehouseCmd.Flags().StringVar(&warehouseDate, "date", "",
		"load date (YYYY-MM-DD, default: today)")
	warehouseCmd.Flags().IntVar(&warehouseBatchSize, "batch-size", 0,
		"rows per multi-row insert (default: 200)")

	ddlCmd.Flags().StringVar(&ddlTable, "table", "",
		"destination table (default: paisEnvejecimiento)")
	ddlCmd.Flags().StringVar(&ddlSource, "source", "",
		"CSV file, relative to the data directory (default: pais_envejecimiento.csv)")
	ddlCmd.Flags().BoolVar(&ddlDryRun, "dry-run", false,
		"print the generated DDL without connecting to MySQL")

	generateCmd.Flags().IntVar(&generateCountries, "countries", 0,
		"number of countries to generate")
	generateCmd.Flags().Uint64Var(&generateSeed, "seed", 0,
		"random seed (0 = random)")
	generateCmd.Flags().StringVar(&generateOutput, "output", "",
		"integrated CSV file, relative to the data directory")
}

func runRelational(cmd *cobra.Command, args []string) error {
	if err := cfg.Relational.Validate("relational"); err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()
	defer trackStage("relational")()

	d, err := openStore(ctx, cfg.Relational)
	if err != nil {
		return err
	}
	defer d.Close()

	result, err := ingest.Run(ctx, d, cfg.Path(relationalEnvFile), cfg.Path(relationalPobFile))
	if err != nil {
		return err
	}

	values := make(map[string]string)
	for _, s := range result.Samples {
		values[s.Table] = strconv.FormatInt(s.Count, 10)
	}
	recordStage(ctx, d, "relational", values)

	return printSummary(cmd.OutOrStdout(), result)
}

func documentPaths() []string {
	paths := make([]string, len(cfg.Documents.Files))
	for i, f := range cfg.Documents.Files {
		paths[i] = cfg.Path(f)
	}
	return paths
}

func runDocuments(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateDocuments(); err != nil {
		return err
	}

	prepared, err := documents.Prepare(documentPaths())
	if err != nil {
		return err
	}
	if documentsDryRun {
		return printSummary(cmd.OutOrStdout(), prepared)
	}

	ctx, cancel := commandContext()
	defer cancel()
	defer trackStage("documents")()

	store, err := documents.Connect(ctx, cfg.Documents.URI, cfg.Documents.Database)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(ctx) }()

	loaded, err := store.Load(ctx, prepared)
	if err != nil {
		return err
	}
	check, err := store.Check(ctx)
	if err != nil {
		return err
	}

	return printSummary(cmd.OutOrStdout(), struct {
		Prepared *documents.Prepared    `yaml:"prepared"`
		Loaded   []documents.LoadResult `yaml:"loaded"`
		Check    *documents.CheckResult `yaml:"check"`
	}{prepared, loaded, check})
}

func runIntegrate(cmd *cobra.Command, args []string) error {
	if integrateFromFiles {
		if err := cfg.Relational.Validate("relational"); err != nil {
			return err
		}
		if len(cfg.Documents.Files) == 0 {
			return fmt.Errorf("at least one documents file is required")
		}
	} else if err := cfg.ValidateIntegrate(); err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()
	defer trackStage("integrate")()

	var source documents.Source
	if integrateFromFiles {
		prepared, err := documents.Prepare(documentPaths())
		if err != nil {
			return err
		}
		source = documents.NewPreparedSource(prepared)
	} else {
		store, err := documents.Connect(ctx, cfg.Documents.URI, cfg.Documents.Database)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close(ctx) }()
		source = store
	}

	d, err := openStore(ctx, cfg.Relational)
	if err != nil {
		return err
	}
	defer d.Close()

	result, err := integrate.Run(ctx, d, source, cfg.Path(integrateOutput))
	if err != nil {
		return err
	}

	recordStage(ctx, d, "integrate", map[string]string{
		"records": strconv.Itoa(len(result.Records)),
		"output":  result.Output,
	})

	return printSummary(cmd.OutOrStdout(), result)
}

func runWarehouse(cmd *cobra.Command, args []string) error {
	if warehouseBatchSize > 0 {
		cfg.BatchSize = warehouseBatchSize
	}
	if err := cfg.ValidateWarehouse(); err != nil {
		return err
	}

	date := time.Now()
	if warehouseDate != "" {
		var err error
		if date, err = time.Parse(warehouse.DateLayout, warehouseDate); err != nil {
			return fmt.Errorf("invalid date %q: %w", warehouseDate, err)
		}
	}

	records, err := ingest.ReadIntegrated(cfg.Path(warehouseInput))
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()
	defer trackStage("warehouse")()

	d, err := openStore(ctx, cfg.Warehouse)
	if err != nil {
		return err
	}
	defer d.Close()

	exists, err := schema.Exists(ctx, d, schema.Star)
	if err != nil {
		return fmt.Errorf("failed to check star schema: %w", err)
	}
	if !exists {
		logging.Info().Msg("Star schema not found, creating it")
		if err := schema.Create(ctx, d, schema.Star); err != nil {
			return err
		}
	}

	batch := datagen.DefaultBatchConfig()
	batch.BatchSize = cfg.BatchSize
	loaded, err := warehouse.LoadWithConfig(ctx, d, records, date, batch)
	if err != nil {
		return err
	}
	verification, err := warehouse.Verify(ctx, d)
	if err != nil {
		return err
	}
	if !verification.OK() {
		return fmt.Errorf("warehouse has %d facts with unresolved foreign keys", verification.Orphans)
	}

	recordStage(ctx, d, "warehouse", map[string]string{
		"fecha_carga": loaded.FechaCarga,
		"records":     strconv.Itoa(len(records)),
		"facts":       strconv.FormatInt(verification.Hechos, 10),
	})

	return printSummary(cmd.OutOrStdout(), struct {
		Load         *warehouse.LoadResult   `yaml:"load"`
		Verification *warehouse.Verification `yaml:"verification"`
	}{loaded, verification})
}

func runDDL(cmd *cobra.Command, args []string) error {
	if ddlTable != "" {
		cfg.MySQL.Table = ddlTable
	}
	if ddlSource != "" {
		cfg.MySQL.Source = ddlSource
	}

	if ddlDryRun {
		_, result, err := ddlgen.Generate(cfg.MySQL.Table, cfg.Path(cfg.MySQL.Source))
		if err != nil {
			return err
		}
		cmd.Println(result.DDL + ";")
		return nil
	}

	if err := cfg.ValidateMySQL(); err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()
	defer trackStage("ddl")()

	d, err := db.ConnectMySQL(ctx, cfg.MySQL.DSN)
	if err != nil {
		return err
	}
	defer d.Close()

	result, err := ddlgen.Run(ctx, d, cfg.MySQL.Table, cfg.Path(cfg.MySQL.Source))
	if err != nil {
		return err
	}
	return printSummary(cmd.OutOrStdout(), result)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if generateCountries > 0 {
		cfg.Generate.Countries = generateCountries
	}
	if generateSeed != 0 {
		cfg.Generate.Seed = generateSeed
	}
	if generateOutput != "" {
		cfg.Generate.Output = generateOutput
	}
	if err := cfg.ValidateGenerate(); err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()
	defer trackStage("generate")()

	gen := datagen.NewRecordGenerator(cfg.Generate.Seed, datagen.DefaultRecordOptions(cfg.Generate.Countries))
	records, err := gen.Generate(ctx)
	if err != nil {
		return err
	}

	out := cfg.Path(cfg.Generate.Output)
	if err := ingest.WriteIntegrated(out, records); err != nil {
		return err
	}
	logging.Info().Str("file", out).Int("records", len(records)).Msg("Wrote synthetic records")

	return printSummary(cmd.OutOrStdout(), integrate.ComputeStats(records))
}
