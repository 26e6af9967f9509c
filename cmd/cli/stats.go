package cli

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/linkshort/linkshort/cmd"
	"github.com/linkshort/linkshort/internal/config"
	customerrors "github.com/linkshort/linkshort/internal/errors"
	"github.com/linkshort/linkshort/internal/repository"
	"github.com/linkshort/linkshort/internal/services"
)

// StatsCmd représente la commande 'stats'
var StatsCmd = &cobra.Command{
	Use:   "stats [hash]",
	Short: "Get statistics for a short URL",
	Long: `Get click statistics for the provided hash. The count only includes
clicks already flushed from the Redis counter to the database.`,
	Args: cobra.ExactArgs(1),
	Run:  runStats,
}

func init() {
	cmd.RootCmd.AddCommand(StatsCmd)
}

// runStats exécute la logique pour la commande stats
func runStats(cmd *cobra.Command, args []string) {
	hash := args[0]

	if len(hash) != services.HashLength {
		fmt.Printf("Error: hash must be exactly %d characters\n", services.HashLength)
		os.Exit(1)
	}

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

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("FATAL: Échec de l'obtention de la base de données SQL sous-jacente: %v", err)
	}
	defer sqlDB.Close()

	// Initialiser les repositories et services nécessaires
	linkRepo := repository.NewLinkRepository(db)
	linkService := services.NewLinkService(linkRepo, nil, cfg.Server.BaseURL)

	// Récupérer le lien et ses statistiques.
	link, err := linkService.GetLinkStats(hash)
	if err != nil {
		if errors.Is(err, customerrors.ErrLinkNotFound) {
			fmt.Printf("Error: hash '%s' not found\n", hash)
		} else {
			fmt.Printf("Error retrieving statistics: %v\n", err)
		}
		os.Exit(1)
	}

	// Afficher les résultats
	fmt.Printf("Statistiques pour le hash: %s\n", hash)
	fmt.Printf("URL d'origine: %s\n", link.OriginalURL)
	fmt.Printf("URL actuelle: %s\n", link.CurrentURL)
	fmt.Printf("Total de clics (flushés): %d\n", link.TimesClicked)
	fmt.Printf("Date de création: %s\n", link.CreatedAt.Format("2006-01-02 15:04:05"))
	if link.ExpiresAt != nil {
		fmt.Printf("Expire le: %s\n", link.ExpiresAt.Format(time.RFC3339))
	}
}
