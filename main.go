package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/yuhuo/column-form/config"
	"github.com/yuhuo/column-form/database"
	"github.com/yuhuo/column-form/form"
	"github.com/yuhuo/column-form/logger"
	"github.com/yuhuo/column-form/models"
	"github.com/yuhuo/column-form/relation"
	"github.com/yuhuo/column-form/ui"
)

func main() {
	os.Exit(realMain())
}

// realMain 返回进程退出码，保证退出前执行所有 defer
func realMain() int {
	configFile := flag.String("config", "config.yaml", "Path to config file")
	envFile := flag.String("env", ".env", "Path to .env file with COLUMN_FORM_* overrides")
	dbName := flag.String("db", "", "Database name (defaults to database.database in config)")
	tableName := flag.String("table", "", "Table name")
	action := flag.String("action", "create", "Form action: create, add or alter")
	numFields := flag.Int("num-fields", 0, "Number of column rows to render (alter: defaults to the selected columns)")
	regenerate := flag.Bool("regenerate", false, "Rebuild the form from previously submitted values")
	formFile := flag.String("form", "", "File with submitted field_xxx[i]=value lines, '-' for stdin")
	selected := flag.String("selected", "", "Comma separated columns to alter")
	output := flag.String("output", "table", "Output format: table or yaml")
	refresh := flag.Bool("refresh", false, "Drop the cached column definitions of the table before loading")
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig(*configFile, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// 初始化日志
	appLogger, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer appLogger.Close()

	if *dbName == "" {
		*dbName = cfg.Database.Database
	}
	if *dbName == "" || *tableName == "" {
		fmt.Fprintln(os.Stderr, "Both -db and -table are required")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, appLogger, options{
		db:         *dbName,
		table:      *tableName,
		action:     models.ParseAction(*action),
		numFields:  *numFields,
		regenerate: *regenerate,
		formFile:   *formFile,
		selected:   splitList(*selected),
		output:     *output,
		refresh:    *refresh,
	}); err != nil {
		appLogger.Error(err.Error())
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return 0
}

type options struct {
	db         string
	table      string
	action     models.Action
	numFields  int
	regenerate bool
	formFile   string
	selected   []string
	output     string
	refresh    bool
}

func run(ctx context.Context, cfg *config.Config, appLogger *logger.Logger, opts options) error {
	appLogger.Info("Application started")
	appLogger.Info(fmt.Sprintf("Connecting to database: %s:%d/%s", cfg.Database.Host, cfg.Database.Port, opts.db))

	// 连接数据库
	conn, err := database.NewConnection(ctx, &cfg.Database, "metadata")
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()
	appLogger.Info(fmt.Sprintf("Connected to %s (%s connection)", cfg.Database.Addr(), conn.Name()))

	helper := database.NewQueryHelper(conn)
	if serverType, err := helper.GetServerType(ctx); err == nil {
		appLogger.Info(fmt.Sprintf("Server type: %s", serverType))
	}

	var source database.Source = helper
	if cfg.Cache.Enabled() {
		client, err := database.NewRedisClient(ctx, cfg.Cache)
		if err != nil {
			// 缓存不可用不影响渲染
			appLogger.Warn(fmt.Sprintf("Column cache disabled: %v", err))
		} else {
			defer client.Close()
			cached := database.NewCachedProvider(source, client, cfg.Database.Addr(), time.Duration(cfg.Cache.TTLSeconds)*time.Second, appLogger)
			if opts.refresh {
				if err := cached.Invalidate(ctx, opts.db, opts.table); err != nil {
					appLogger.Warn(err.Error())
				}
			}
			source = cached
			appLogger.Info(fmt.Sprintf("Column cache enabled: %s", cfg.Cache.RedisAddr))
		}
	}

	submitted, err := readForm(opts.formFile)
	if err != nil {
		return err
	}

	loader := form.NewLoader(source, appLogger)
	in, err := loader.Load(ctx, form.LoadRequest{
		DB:         opts.db,
		Table:      opts.table,
		Action:     opts.action,
		SlotCount:  opts.numFields,
		Regenerate: opts.regenerate,
		Submitted:  submitted,
		Selected:   opts.selected,
	})
	if err != nil {
		return err
	}

	// 修改列时未指定行数则每个选中的列一行
	if in.SlotCount == 0 && opts.action.IsBackup() {
		in.SlotCount = len(in.Live)
	}

	reconciler := form.NewReconciler(source, relation.NewChecker(), appLogger)
	slots, err := reconciler.Reconcile(ctx, in)
	if err != nil {
		return fmt.Errorf("failed to build column form: %w", err)
	}

	appLogger.Info(fmt.Sprintf("Built %d column rows for %s.%s", len(slots), opts.db, opts.table))

	switch opts.output {
	case "yaml":
		return ui.WriteYAML(os.Stdout, slots)
	default:
		ui.PrintSlots(os.Stdout, fmt.Sprintf("%s.%s", opts.db, opts.table), slots)
		ui.PrintLockedColumns(os.Stdout, slots)
		if opts.action.IsBackup() {
			ui.PrintChanges(os.Stdout, form.ChangedSlots(slots))
		}
	}
	return nil
}

// readForm 读取 -form 指定的提交内容
func readForm(path string) (form.SubmittedFields, error) {
	if path == "" {
		return form.SubmittedFields{}, nil
	}
	if path == "-" {
		return ui.ReadSubmittedFields(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open form file: %w", err)
	}
	defer f.Close()
	return ui.ReadSubmittedFields(f)
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
