package geocode

import (
	"context"
	"errors"
	"fmt"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
)

// LookupAPIKey finds the Maps key named displayName in project and returns
// its secret. projectID falls back to the project of the application default
// credentials when empty.
func LookupAPIKey(ctx context.Context, projectID, displayName string) (string, error) {
	if projectID == "" {
		creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
		if err != nil {
			return "", fmt.Errorf("geocode.LookupAPIKey: finding default credentials: %w", err)
		}
		projectID = creds.ProjectID
	}
	if projectID == "" {
		return "", errors.New("geocode.LookupAPIKey: no project id configured or found in credentials")
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("geocode.LookupAPIKey: creating client: %w", err)
	}
	defer client.Close()

	it := client.ListKeys(ctx, &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	})
	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("geocode.LookupAPIKey: listing keys: %w", err)
		}
		if key.DisplayName != displayName {
			continue
		}

		// ListKeys redacts the secret.
		resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: key.Name})
		if err != nil {
			return "", fmt.Errorf("geocode.LookupAPIKey: getting key string: %w", err)
		}
		if resp.KeyString == "" {
			return "", fmt.Errorf("geocode.LookupAPIKey: key %q has an empty key string", displayName)
		}
		return resp.KeyString, nil
	}

	return "", fmt.Errorf("geocode.LookupAPIKey: key %q not found in project %s", displayName, projectID)
}
