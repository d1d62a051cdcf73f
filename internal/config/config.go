package config

import (
	"log"

	"github.com/joho/godotenv"
)

// Load charge le .env local. En production le fichier n'existe pas et
// tout vient de l'environnement du processus.
func Load() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️ Aucun fichier .env trouvé, on lit les variables d'environnement du système")
		return
	}
	log.Println("✅ Fichier .env chargé")
}
