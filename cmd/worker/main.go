package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/ugd-resolver/app/bootstrap"
	"github.com/ugd-resolver/app/config"
	"github.com/ugd-resolver/app/requests"
	"github.com/ugd-resolver/app/services"
	"github.com/ugd-resolver/helpers/utils"
	"go.uber.org/zap"
)

func main() {
	pflag.String("in", "", "file địa danh, mỗi dòng một địa danh (- = stdin)")
	pflag.Bool("reindex", true, "build lại index Meilisearch trước khi xử lý")
	pflag.Bool("suggest", false, "kèm gợi ý cho địa danh không khớp")
	pflag.Int("workers", 0, "số goroutine resolve (0 = theo config)")
	pflag.Parse()

	bootstrap.LoadConfig()
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		panic(err)
	}

	logger := bootstrap.InitLogger()
	defer logger.Sync()

	logger.Info("Starting UGD Resolver Worker...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	comp := bootstrap.Build(ctx, logger)
	defer comp.Close()

	if viper.GetBool("reindex") {
		adminService := services.NewAdminService(comp.Resolver, comp.Source, comp.Cache,
			comp.Indexer(), comp.Metrics, logger)
		if err := adminService.RebuildIndex(); err != nil {
			logger.Warn("Bỏ qua build index", zap.Error(err))
		}
	}

	in := viper.GetString("in")
	if in == "" {
		logger.Info("Không có --in, worker kết thúc")
		return
	}

	localities, err := readLocalities(in)
	if err != nil {
		logger.Fatal("Lỗi đọc file địa danh", zap.String("in", in), zap.Error(err))
	}

	resolverService := services.NewResolverService(comp.Resolver, comp.Cache, comp.Suggester,
		comp.SearchBackend(), comp.Metrics, logger)
	resolverService.SetBatchWorkers(config.C.Batch.Workers)
	resolverService.SetBatchWorkers(viper.GetInt("workers"))

	opts := requests.ResolveOptions{UseCache: true, Suggest: viper.GetBool("suggest")}
	jobID := utils.GenerateJobID()
	resolverService.ProcessBatchJob(ctx, jobID, localities, opts)

	status, _ := resolverService.GetJobStatus(jobID)
	results, err := resolverService.GetJobResultsStream(jobID)
	if err != nil {
		logger.Fatal("Job không hoàn thành", zap.String("message", status.Message))
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	encoder := json.NewEncoder(out)
	for result := range results {
		if err := encoder.Encode(result); err != nil {
			logger.Error("Lỗi encode NDJSON", zap.Error(err))
			return
		}
	}

	logger.Info("Worker hoàn thành",
		zap.Int("total", status.Total),
		zap.Int("matched", status.Matched))
}

// readLocalities đọc mỗi dòng một địa danh, bỏ dòng trống
func readLocalities(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var localities []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			localities = append(localities, line)
		}
	}
	return localities, scanner.Err()
}
