package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/linkshort/linkshort/cmd"
	"github.com/linkshort/linkshort/internal/api"
	"github.com/linkshort/linkshort/internal/cache"
	"github.com/linkshort/linkshort/internal/config"
	"github.com/linkshort/linkshort/internal/models"
	"github.com/linkshort/linkshort/internal/monitor"
	"github.com/linkshort/linkshort/internal/repository"
	"github.com/linkshort/linkshort/internal/services"
	"github.com/linkshort/linkshort/internal/workers"
)

// RunServerCmd représente la commande 'run-server' de Cobra.
// C'est le point d'entrée pour lancer le serveur de l'application.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Lance le serveur API de raccourcissement d'URLs et les processus de fond.",
	Long: `Cette commande initialise la base de données et Redis, configure les APIs,
démarre le flusher de clics et le moniteur d'URLs,
puis lance le serveur HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Charger la configuration
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Échec du chargement de la configuration : %v", err)
		}

		// Initialiser la base de données
		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{})
		if err != nil {
			log.Fatalf("Échec de la connexion à la base de données : %v", err)
		}

		// Migration automatique des modèles
		if err := db.AutoMigrate(&models.User{}, &models.Link{}); err != nil {
			log.Fatalf("Échec de la migration de la base de données : %v", err)
		}

		// Initialiser le client Redis pour le compteur de clics
		redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Échec de la connexion à Redis : %v", err)
		}
		clickCounter := cache.NewRedisClickCounter(redisClient, cfg.Redis.KeyPrefix)

		// Initialiser les repositories
		linkRepo := repository.NewLinkRepository(db)
		userRepo := repository.NewUserRepository(db)
		log.Println("Repositories initialisés.")

		// Initialiser les services métiers
		linkService := services.NewLinkService(linkRepo, clickCounter, cfg.Server.BaseURL)
		authService := services.NewAuthService(userRepo, cfg.JWT.Secret, cfg.TokenTTL())
		log.Println("Services métiers initialisés.")

		// Contexte racine des processus de fond, annulé à l'arrêt du serveur
		ctx, stop := context.WithCancel(context.Background())
		defer stop()

		// Lancer le flusher de clics : draine le compteur Redis vers la base
		flusher := workers.NewClickFlusher(linkRepo, clickCounter, cfg.FlushInterval())
		flusherDone := make(chan struct{})
		go func() {
			defer close(flusherDone)
			flusher.Start(ctx)
		}()
		log.Printf("Flusher de clics démarré avec un intervalle de %v.", cfg.FlushInterval())

		// Initialiser et lancer le moniteur d'URLs.
		monitorInterval := time.Duration(cfg.Monitor.IntervalMinutes) * time.Minute
		urlMonitor := monitor.NewUrlMonitor(linkRepo, monitorInterval)
		go urlMonitor.Start(ctx)
		log.Printf("Moniteur d'URLs démarré avec un intervalle de %v.", monitorInterval)

		// Configurer le routeur Gin et les handlers API.
		router := gin.Default()
		api.SetupRoutes(router, linkService, authService, db, redisClient)
		log.Println("Routes API configurées.")

		// Créer le serveur HTTP Gin
		serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
		srv := &http.Server{
			Addr:    serverAddr,
			Handler: router,
		}

		// Démarrer le serveur Gin dans une goroutine pour ne pas bloquer.
		go func() {
			log.Printf("Démarrage du serveur sur %s", serverAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Échec du démarrage du serveur : %v", err)
			}
		}()

		// Gérer l'arrêt propre du serveur (graceful shutdown).
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		<-quit
		log.Println("Signal d'arrêt reçu. Arrêt du serveur...")

		// Arrêt propre du serveur HTTP avec un timeout.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Erreur lors de l'arrêt du serveur HTTP : %v", err)
		}

		// Arrêter les processus de fond ; le flusher fait un dernier drain.
		stop()
		<-flusherDone

		if err := redisClient.Close(); err != nil {
			log.Printf("Erreur lors de la fermeture du client Redis : %v", err)
		}

		log.Println("Serveur arrêté proprement.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
