package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/martin635579763/chordsync/internal/profile"
	"github.com/martin635579763/chordsync/internal/version"
	"github.com/martin635579763/chordsync/plugin/ai"
	"github.com/martin635579763/chordsync/plugin/catalog"
	"github.com/martin635579763/chordsync/plugin/video"
	"github.com/martin635579763/chordsync/server"
	"github.com/martin635579763/chordsync/server/auth"
	"github.com/martin635579763/chordsync/server/service/chart"
	"github.com/martin635579763/chordsync/store"
	"github.com/martin635579763/chordsync/store/db"
)

const greetingBanner = `
 ██████╗██╗  ██╗ ██████╗ ██████╗ ██████╗ ███████╗██╗   ██╗███╗   ██╗ ██████╗
██╔════╝██║  ██║██╔═══██╗██╔══██╗██╔══██╗██╔════╝╚██╗ ██╔╝████╗  ██║██╔════╝
██║     ███████║██║   ██║██████╔╝██║  ██║███████╗ ╚████╔╝ ██╔██╗ ██║██║
██║     ██╔══██║██║   ██║██╔══██╗██║  ██║╚════██║  ╚██╔╝  ██║╚██╗██║██║
╚██████╗██║  ██║╚██████╔╝██║  ██║██████╔╝███████║   ██║   ██║ ╚████║╚██████╗
 ╚═════╝╚═╝  ╚═╝ ╚═════╝ ╚═╝  ╚═╝╚═════╝ ╚══════╝   ╚═╝   ╚═╝  ╚═══╝ ╚═════╝
`

var rootCmd = &cobra.Command{
	Use:   "chordsync",
	Short: "An AI-assisted chord chart service with a content-addressed generation cache",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		instanceProfile := &profile.Profile{
			Mode:    viper.GetString("mode"),
			Addr:    viper.GetString("addr"),
			Port:    viper.GetInt("port"),
			Data:    viper.GetString("data"),
			Driver:  viper.GetString("driver"),
			DSN:     viper.GetString("dsn"),
			Secret:  viper.GetString("secret"),
			Version: version.GetCurrentVersion(viper.GetString("mode")),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			return fmt.Errorf("failed to validate profile: %w", err)
		}

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			return fmt.Errorf("failed to create db driver: %w", err)
		}
		storeInstance := store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		catalogService, err := catalog.NewSpotifyService(catalog.SpotifyConfig{
			ClientID:     instanceProfile.SpotifyClientID,
			ClientSecret: instanceProfile.SpotifyClientSecret,
		})
		if err != nil {
			return fmt.Errorf("failed to create catalog service: %w", err)
		}
		videoService, err := video.NewYouTubeService(instanceProfile.YouTubeAPIKey)
		if err != nil {
			return fmt.Errorf("failed to create video service: %w", err)
		}
		if !instanceProfile.IsAIEnabled() {
			return fmt.Errorf("no generator backend configured, set CHORDSYNC_AI_API_KEY")
		}
		generator, err := ai.NewOpenAIGenerator(&ai.Config{
			BaseURL:   instanceProfile.AIBaseURL,
			APIKey:    instanceProfile.AIAPIKey,
			ChatModel: instanceProfile.AIChatModel,
		}, catalogService)
		if err != nil {
			return fmt.Errorf("failed to create generator: %w", err)
		}

		signer := auth.NewSessionSigner(instanceProfile.Secret)
		gate := auth.NewAdminGate(signer, instanceProfile.AdminEmailList())
		chartService := chart.NewService(storeInstance, generator, catalogService, gate)

		s := server.NewServer(instanceProfile, storeInstance, chartService, catalogService, videoService)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			slog.Info("received signal, shutting down", slog.String("signal", sig.String()))
			s.Shutdown(ctx)
			cancel()
		}()

		printGreetings(instanceProfile)
		if err := s.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}

		<-ctx.Done()
		return nil
	},
}

func printGreetings(p *profile.Profile) {
	print(greetingBanner)
	fmt.Printf("version %s has been started on port %d\n", p.Version, p.Port)
}

func init() {
	rootCmd.PersistentFlags().String("mode", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8230, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")
	rootCmd.PersistentFlags().String("secret", "chordsync", "secret used to sign session cookies")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("chordsync")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("failed to run command", slog.Any("error", err))
		os.Exit(1)
	}
}
