package firebase

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// NewApp initialises the Firebase app shared by Firestore and Cloud Messaging.
// Base64 encoded credentials in encodedCreds win over the local key file. With
// neither present the app falls back to application default credentials, which
// is also what the Firestore emulator expects.
func NewApp(ctx context.Context, projectID, encodedCreds, localFilePath string) (*firebase.App, error) {
	var opts []option.ClientOption

	if encodedCreds != "" {
		decoded, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 firebase credentials: %v", err)
		}
		opts = append(opts, option.WithCredentialsJSON(decoded))
		log.Println("Firebase: Initializing from FIREBASE_SERVICE_ACCOUNT_JSON environment variable.")
	} else if localFilePath != "" {
		if _, err := os.Stat(localFilePath); err == nil {
			opts = append(opts, option.WithCredentialsFile(localFilePath))
			log.Printf("Firebase: Initializing from local file: %s.", localFilePath)
		} else {
			log.Printf("Firebase: credentials file %s not found, using application default credentials", localFilePath)
		}
	}

	var cfg *firebase.Config
	if projectID != "" {
		cfg = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %v", err)
	}
	return app, nil
}
