package util

import (
	"context"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	dataframebuffer "github.com/zikwall/dataframe-buffer"
	"github.com/zikwall/dataframe-buffer/src/buffer/cxredis"
	"github.com/zikwall/dataframe-buffer/src/cx"
	"github.com/zikwall/dataframe-buffer/src/db/cxclickhouse"
	"github.com/zikwall/dataframe-buffer/src/db/cxsqlite"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}
	return strings.Join(wrappedLines, "\n")
}

// InitConfig loads .env files and reads DFBUFFER_<FLAG> environment variables
func InitConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("dfbuffer")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command, _ []string) error {
	return viper.BindPFlags(cmd.Flags())
}

// SetupStoreFlags adds the flags selecting where a dumper writes and how often
func SetupStoreFlags(cmd *cobra.Command) {
	key := "dump-after-appends"
	cmd.PersistentFlags().Uint(key, 1000, WrapString("Number of appended frames after which the buffer is written to the store, bounds memory use"))

	key = "dump-after-seconds"
	cmd.PersistentFlags().Float64(key, 10, WrapString("Seconds since the last write after which the next append writes the buffer, bounds data loss"))

	key = "redis-addr"
	cmd.PersistentFlags().String(key, "", WrapString("Keep pending frames in this Redis server instead of process memory (e.g. localhost:6379)"))

	key = "clickhouse-addr"
	cmd.PersistentFlags().String(key, "", WrapString("Write to this ClickHouse server instead of a SQLite file (e.g. localhost:9000)"))

	key = "clickhouse-database"
	cmd.PersistentFlags().String(key, "default", WrapString("ClickHouse database holding the tables"))

	key = "clickhouse-user"
	cmd.PersistentFlags().String(key, "", WrapString("ClickHouse user, the server default when empty"))

	key = "clickhouse-password"
	cmd.PersistentFlags().String(key, "", WrapString("ClickHouse password, prefer DFBUFFER_CLICKHOUSE_PASSWORD over the command line"))

	key = "redis-user"
	cmd.PersistentFlags().String(key, "", WrapString("Redis ACL user"))

	key = "redis-pass"
	cmd.PersistentFlags().String(key, "", WrapString("Redis password, prefer DFBUFFER_REDIS_PASS over the command line"))
}

func Logger() cx.Logger {
	return cx.NewDefaultLogger()
}

// DumperOptions reads dumper options from viper
func DumperOptions() *dataframebuffer.Options {
	return dataframebuffer.NewOptions(
		dataframebuffer.WithDumpAfterAppends(viper.GetUint("dump-after-appends")),
		dataframebuffer.WithDumpAfterSeconds(viper.GetFloat64("dump-after-seconds")),
		dataframebuffer.WithDebugMode(viper.GetBool("debug")),
		dataframebuffer.WithLogger(Logger()),
	)
}

// UseClickhouse reports whether a ClickHouse server replaces SQLite files
func UseClickhouse() bool {
	return viper.GetString("clickhouse-addr") != ""
}

func clickhouseOptions() *clickhouse.Options {
	return &clickhouse.Options{
		Addr: []string{viper.GetString("clickhouse-addr")},
		Auth: clickhouse.Auth{
			Database: viper.GetString("clickhouse-database"),
			Username: viper.GetString("clickhouse-user"),
			Password: viper.GetString("clickhouse-password"),
		},
		DialTimeout: 5 * time.Second,
		Debug:       viper.GetBool("debug"),
	}
}

// OpenStore opens the configured ClickHouse server, or the SQLite file at path.
// A SQLite file left by a previous run is removed first when fresh is set.
func OpenStore(ctx context.Context, path string, fresh bool) (cx.Store, error) {
	if UseClickhouse() {
		store, _, err := cxclickhouse.NewClickhouse(ctx, clickhouseOptions())
		return store, err
	}
	if fresh {
		if err := cxsqlite.RemoveFiles(path); err != nil {
			return nil, err
		}
	}
	store, _, err := cxsqlite.Open(ctx, path)
	return store, err
}

// OpenReader opens the configured ClickHouse server, or the SQLite file at path, for loading
func OpenReader(ctx context.Context, path string) (cx.Store, error) {
	if UseClickhouse() {
		store, _, err := cxclickhouse.NewClickhouse(ctx, clickhouseOptions())
		return store, err
	}
	store, _, err := cxsqlite.OpenReadOnly(ctx, path)
	return store, err
}

// OpenBuffer returns a Redis buffer engine for bucket when a Redis server is configured.
// A nil buffer selects the in-memory engine. The caller closes the returned client.
func OpenBuffer(ctx context.Context, bucket string) (cx.Buffer, *redis.Client, error) {
	addr := viper.GetString("redis-addr")
	if addr == "" {
		return nil, nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: viper.GetString("redis-user"),
		Password: viper.GetString("redis-pass"),
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	buffer, err := cxredis.NewBuffer(ctx, rdb, bucket)
	if err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	return buffer, rdb, nil
}
