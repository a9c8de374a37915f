package repository

import (
	"context"
	"fmt"
	"io"
	"time"

	"marketplace_chat_service/pkg/database"
)

// AttachmentRepository definition stored-file access for messages
type AttachmentRepository interface {
	// Save stores the file under the message's object key and returns it
	Save(ctx context.Context, messageID, fileName string, reader io.Reader, size int64, contentType string) (string, error)
	// Open streams the object, caller closes
	Open(ctx context.Context, objectName string) (io.ReadCloser, error)
	Remove(ctx context.Context, objectName string) error
	PresignURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

type minioAttachmentRepository struct {
	client *database.MinIOClient
}

// NewMinioAttachmentRepository create an AttachmentRepository on minio
func NewMinioAttachmentRepository(client *database.MinIOClient) AttachmentRepository {
	return &minioAttachmentRepository{client: client}
}

func (r *minioAttachmentRepository) Save(ctx context.Context, messageID, fileName string, reader io.Reader, size int64, contentType string) (string, error) {
	objectName := fmt.Sprintf("attachments/%s/%s", messageID, fileName)
	if err := r.client.UploadStream(ctx, objectName, reader, size, contentType); err != nil {
		return "", err
	}
	return objectName, nil
}

func (r *minioAttachmentRepository) Open(ctx context.Context, objectName string) (io.ReadCloser, error) {
	return r.client.GetObjectStream(ctx, objectName)
}

func (r *minioAttachmentRepository) Remove(ctx context.Context, objectName string) error {
	return r.client.RemoveFile(ctx, objectName)
}

func (r *minioAttachmentRepository) PresignURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	return r.client.PresignGetURL(ctx, objectName, expiry)
}
