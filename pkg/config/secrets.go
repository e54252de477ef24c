package config

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

const secretRefPrefix = "sm://"

// IsSecretRef reports whether a configuration value points at Secret Manager
// instead of carrying the secret inline.
func IsSecretRef(value string) bool {
	return strings.HasPrefix(value, secretRefPrefix)
}

// resolveSecrets replaces every sm:// reference in cfg with the payload of
// the referenced secret version. The Secret Manager client is only created
// when at least one reference is present.
func resolveSecrets(ctx context.Context, cfg *Config) error {
	targets := []*string{
		&cfg.InferenceAPIKey,
		&cfg.GroqAPIKey,
		&cfg.ElevenLabsAPIKey,
		&cfg.StorageCredentials,
		&cfg.DatabaseURL,
	}

	hasRefs := false
	for _, target := range targets {
		if IsSecretRef(*target) {
			hasRefs = true
			break
		}
	}
	if !hasRefs {
		return nil
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create secret manager client: %w", err)
	}
	defer func() { _ = client.Close() }()

	for _, target := range targets {
		if !IsSecretRef(*target) {
			continue
		}
		value, err := accessSecret(ctx, client, cfg.GCPProject, *target)
		if err != nil {
			return err
		}
		*target = value
	}

	return nil
}

// secretVersionName expands an sm:// shorthand into a full Secret Manager
// resource name. Accepted forms:
//
//	sm://projects/<project>/secrets/<secret>/versions/<version>
//	sm://<project>/<secret>[/<version>]
//	sm://<secret>  (project taken from GOOGLE_CLOUD_PROJECT)
func secretVersionName(project, ref string) (string, error) {
	trimmed := strings.TrimPrefix(ref, secretRefPrefix)
	if strings.HasPrefix(trimmed, "projects/") {
		return trimmed, nil
	}

	parts := strings.Split(trimmed, "/")
	switch len(parts) {
	case 1:
		if project == "" {
			return "", fmt.Errorf("secret reference %q requires GOOGLE_CLOUD_PROJECT to be set", ref)
		}
		return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, parts[0]), nil
	case 2:
		return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", parts[0], parts[1]), nil
	case 3:
		return fmt.Sprintf("projects/%s/secrets/%s/versions/%s", parts[0], parts[1], parts[2]), nil
	default:
		return "", fmt.Errorf("malformed secret reference: %q", ref)
	}
}

func accessSecret(ctx context.Context, client *secretmanager.Client, project, ref string) (string, error) {
	name, err := secretVersionName(project, ref)
	if err != nil {
		return "", err
	}

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("failed to access secret %s: %w", name, err)
	}

	return string(resp.GetPayload().GetData()), nil
}
