// Command prepctl runs maintenance tasks against the interview store.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	mongoURI    string
	mongoDBName string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "prepctl",
	Short: "Maintenance commands for the interview service",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&mongoURI, "mongo-uri", envOr("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0"), "MongoDB connection string")
	rootCmd.PersistentFlags().StringVar(&mongoDBName, "db", envOr("MONGO_DB_NAME", "prepwise"), "MongoDB database name")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
