package main

import (
	"context"
	"encoding/base64"
	"flag"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	"brokeaf/backend/api"
	"brokeaf/backend/database"
	"brokeaf/backend/services"
	"brokeaf/backend/storage"
)

func main() {
	demoDBPath := flag.String("demo-db", "", "Path to the demo store database (overrides DEMO_DB_PATH)")
	flag.Parse()

	// Load .env for local development; missing file is fine.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded, using environment as-is")
	}

	ctx := context.Background()

	// Initialize Firebase Admin SDK (identity + Firestore)
	log.Println("Initializing Firebase Admin SDK...")
	authClient, fsClient, err := initFirebase(ctx)
	if err != nil {
		log.Printf("Warning: Failed to initialize Firebase: %v", err)
		log.Println("Auth token verification will be disabled and all data will use the local demo store!")
	}
	if fsClient != nil {
		defer fsClient.Close()
	}

	// Open the demo store
	path := *demoDBPath
	if path == "" {
		path = database.DefaultPath()
	}
	demoDB, err := database.Open(path)
	if err != nil {
		log.Fatal(err)
	}
	defer demoDB.Close()

	demoStore := storage.NewLocalStore(demoDB)
	resolver := &storage.Resolver{Demo: demoStore}
	if fsClient != nil {
		resolver.Remote = storage.NewFirestoreStore(fsClient)
	}

	insightService, err := services.NewInsightService(ctx, os.Getenv("GEMINI_API_KEY"))
	if err != nil {
		log.Printf("Warning: insight service unavailable: %v", err)
	}
	if insightService == nil {
		log.Println("GEMINI_API_KEY not set; insight requests will return fallback text")
	}

	server := api.NewServer(api.Deps{
		AuthClient: authClient,
		Stores:     resolver,
		Demo:       demoStore,
		Insights:   insightService,
	})

	// Serve the built frontend from the "dist" directory; unmatched
	// GETs fall through to the SPA entry point.
	r := server.Router()
	fs := http.FileServer(http.Dir("./dist"))
	r.PathPrefix("/assets/").Handler(fs)
	r.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !strings.HasPrefix(req.URL.Path, "/assets/") {
			log.Printf("Serving index.html for path: %s", req.URL.Path)
		}
		http.ServeFile(w, req, "./dist/index.html")
	}).Methods("GET")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Handler:     server.Handler(),
		Addr:        ":" + port,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the stream endpoints hold their
		// connections open indefinitely.
	}

	log.Printf("Starting server on port %s...", port)
	log.Fatal(srv.ListenAndServe())
}

// initFirebase builds the auth and Firestore clients from whichever
// credential form the environment provides. Returning an error leaves
// both nil and the server runs in demo-only mode.
func initFirebase(ctx context.Context) (*auth.Client, *firestore.Client, error) {
	opt, err := firebaseCredentials()
	if err != nil {
		return nil, nil, err
	}
	if opt == nil {
		log.Println("No Firebase credentials found, running in demo-only mode")
		return nil, nil, nil
	}

	config := &firebase.Config{ProjectID: os.Getenv("FIREBASE_PROJECT_ID")}
	app, err := firebase.NewApp(ctx, config, opt)
	if err != nil {
		return nil, nil, err
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, nil, err
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, nil, err
	}

	log.Println("Firebase Admin SDK initialized successfully")
	return authClient, fsClient, nil
}

// firebaseCredentials probes the environment for service-account
// credentials, preferring raw JSON, then base64.
func firebaseCredentials() (option.ClientOption, error) {
	if credentials := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); credentials != "" {
		log.Println("Using JSON Firebase credentials from environment")
		return option.WithCredentialsJSON([]byte(credentials)), nil
	}

	if encoded := os.Getenv("FIREBASE_SERVICE_ACCOUNT_BASE64"); encoded != "" {
		log.Println("Using base64-encoded Firebase credentials from environment")
		credentials, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, err
		}
		return option.WithCredentialsJSON(credentials), nil
	}

	if path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); path != "" {
		log.Println("Using application default credentials file")
		return option.WithCredentialsFile(path), nil
	}

	return nil, nil
}
