package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"videoshare/video-api/app"
	"videoshare/video-api/config"
	"videoshare/video-api/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	if uid := viper.GetString("mint-token"); uid != "" {
		if err := mintToken(uid, viper.GetString("mint-role")); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router, d, err := app.NewRouter(ctx)
	if err != nil {
		panic(err)
	}
	defer d.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", viper.GetInt("host.port")),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("Server starting", zap.String("addr", srv.Addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Graceful shutdown failed", zap.Error(err))
	}
}

func mintToken(uid, role string) error {
	if viper.GetString("auth.provider") != "hmac" {
		return errors.New("--mint-token only works with the hmac auth provider")
	}

	token, err := auth.NewHMAC(viper.GetString("auth.jwt_secret"), viper.GetDuration("auth.token_ttl")).Issue(uid, "", role)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
