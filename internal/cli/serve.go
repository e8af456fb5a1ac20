package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/uploadkit/internal/server"
	"github.com/dmitrymomot/uploadkit/pkg/config"
	"github.com/dmitrymomot/uploadkit/pkg/logger"
	"github.com/dmitrymomot/uploadkit/pkg/redis"
	"github.com/dmitrymomot/uploadkit/pkg/transfer"
	"github.com/dmitrymomot/uploadkit/pkg/upload"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		addr      string
		withRedis bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload endpoint over HTTP",
		Long: `Serve POST /upload and GET /health.

The pipeline is configured by UPLOAD_* variables, the server by HTTP_*,
S3 by S3_* and Redis by REDIS_* variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			base := root.newLogger(cmd)
			logger.SetAsDefault(base)
			log := base.With(logger.Component("cli"))

			var srvCfg server.Config
			if err := config.Load(&srvCfg, root.envFiles...); err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				srvCfg.Addr = addr
			}

			var uploadCfg upload.Config
			if err := config.Load(&uploadCfg, root.envFiles...); err != nil {
				return err
			}

			opts := []server.Option{server.WithLogger(base)}
			var uploadOpts []upload.Option

			if uploadCfg.Transfer == transfer.NameS3 {
				t, err := newS3Transfer(ctx, root)
				if err != nil {
					return err
				}
				uploadOpts = append(uploadOpts, upload.WithTransfer(t))
			}

			if withRedis {
				var rcfg redis.Config
				if err := config.Load(&rcfg, root.envFiles...); err != nil {
					return err
				}
				client, err := redis.Connect(ctx, rcfg, redis.WithLogger(log))
				if err != nil {
					return err
				}
				defer func() { _ = client.Close() }()

				uploadOpts = append(uploadOpts, upload.WithSink(upload.NewRedisSink(client,
					upload.WithSinkKey(rcfg.ResultsKey),
					upload.WithSinkMaxLen(rcfg.ResultsMaxLen),
				)))
				opts = append(opts, server.WithHealthcheck(redis.Healthcheck(client)))
				log.Info("recording upload results in redis", "key", rcfg.ResultsKey)
			}

			opts = append(opts, server.WithUploadOptions(uploadOpts...))
			return server.New(srvCfg, uploadCfg, opts...).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().BoolVar(&withRedis, "redis", false, "Record results in Redis and check it in /health")
	return cmd
}

func newS3Transfer(ctx context.Context, root *rootOptions) (*transfer.S3Transfer, error) {
	var cfg transfer.S3Config
	if err := config.Load(&cfg, root.envFiles...); err != nil {
		return nil, err
	}
	return transfer.NewS3(ctx, cfg)
}
