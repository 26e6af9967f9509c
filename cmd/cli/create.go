package cli

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/linkshort/linkshort/cmd"
	"github.com/linkshort/linkshort/internal/config"
	"github.com/linkshort/linkshort/internal/repository"
	"github.com/linkshort/linkshort/internal/services"
)

var (
	originalURLFlag string
	expiresAtFlag   string
)

// CreateCmd représente la commande 'create'
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Crée une URL courte à partir d'une URL longue.",
	Long: `Cette commande raccourcit une URL fournie et affiche le hash généré.
Le lien créé est anonyme : il ne pourra être ni modifié ni supprimé.

Exemple:
  linkshort create --url="https://www.google.com/search?q=go+lang"
  linkshort create --url="https://example.com" --expires="2027-01-01T00:00:00Z"`,
	Run: func(cmd *cobra.Command, args []string) {
		// Validation basique du format de l'URL
		if _, err := url.ParseRequestURI(originalURLFlag); err != nil {
			fmt.Printf("Error: Invalid URL format: %v\n", err)
			os.Exit(1)
		}

		// Parser la date d'expiration optionnelle (RFC 3339)
		var expiresAt *time.Time
		if expiresAtFlag != "" {
			parsed, err := time.Parse(time.RFC3339, expiresAtFlag)
			if err != nil {
				fmt.Printf("Error: Invalid --expires value (expected RFC 3339): %v\n", err)
				os.Exit(1)
			}
			expiresAt = &parsed
		}

		// Charger la configuration
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{})
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			log.Fatalf("FATAL: Failed to get underlying SQL database: %v", err)
		}
		defer sqlDB.Close()

		// Initialiser les repositories et services nécessaires.
		// Le compteur de clics n'est pas requis : la création n'y touche jamais.
		linkRepo := repository.NewLinkRepository(db)
		linkService := services.NewLinkService(linkRepo, nil, cfg.Server.BaseURL)

		// Appeler le LinkService pour créer le lien court (anonyme).
		link, err := linkService.CreateLink(originalURLFlag, expiresAt, nil)
		if err != nil {
			log.Fatalf("Failed to create short link: %v", err)
		}

		fmt.Printf("URL courte créée avec succès:\n")
		fmt.Printf("Hash: %s\n", link.Hash)
		fmt.Printf("URL complète: %s\n", linkService.ShortURL(link.Hash))
		if link.ExpiresAt != nil {
			fmt.Printf("Expire le: %s\n", link.ExpiresAt.Format(time.RFC3339))
		}
	},
}

func init() {
	// Définir les flags pour la commande create.
	CreateCmd.Flags().StringVar(&originalURLFlag, "url", "", "The URL to shorten")
	CreateCmd.Flags().StringVar(&expiresAtFlag, "expires", "", "Optional expiry timestamp (RFC 3339)")

	// Marquer le flag comme requis
	CreateCmd.MarkFlagRequired("url")

	// Ajouter la commande à RootCmd
	cmd.RootCmd.AddCommand(CreateCmd)
}
