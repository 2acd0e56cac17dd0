package aws

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"

	"github.com/Harsh-BH/datalake/internal/domain"
)

// classify maps service error codes onto the domain sentinels so callers can
// use errors.Is without knowing which service produced the error.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket", "NoSuchKey", "EntityNotFoundException":
			return fmt.Errorf("aws: %s: %w: %s", op, domain.ErrNotFound, apiErr.ErrorMessage())
		case "BucketAlreadyOwnedByYou", "BucketAlreadyExists", "AlreadyExistsException":
			return fmt.Errorf("aws: %s: %w: %s", op, domain.ErrAlreadyExists, apiErr.ErrorMessage())
		case "BucketNotEmpty":
			return fmt.Errorf("aws: %s: %w: %s", op, domain.ErrNotEmpty, apiErr.ErrorMessage())
		}
	}
	return fmt.Errorf("aws: %s: %w", op, err)
}
