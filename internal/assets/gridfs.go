package assets

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const gridFSBucket = "content_assets"

// GridFSStore keeps assets in a MongoDB GridFS bucket. Keys are the hex
// ObjectIDs of the stored files.
type GridFSStore struct {
	client *mongo.Client
	bucket *gridfs.Bucket
}

func NewGridFSStore(ctx context.Context, uri, database string) (*GridFSStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongodb")
	}
	bucket, err := gridfs.NewBucket(client.Database(database), options.GridFSBucket().SetName(gridFSBucket))
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "create gridfs bucket")
	}
	return &GridFSStore{client: client, bucket: bucket}, nil
}

func (s *GridFSStore) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

func (s *GridFSStore) Put(ctx context.Context, filename, mimeType string, r io.Reader) (Info, error) {
	if !IsImage(mimeType) {
		return Info{}, ErrNotImage
	}
	metadata := bson.M{
		"mime_type":   mimeType,
		"uploaded_at": time.Now().UTC(),
	}
	stream, err := s.bucket.OpenUploadStream(filename, options.GridFSUpload().SetMetadata(metadata))
	if err != nil {
		return Info{}, errors.Wrap(err, "open gridfs upload")
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(dl)
	}
	size, err := io.Copy(stream, r)
	if err != nil {
		_ = stream.Abort()
		return Info{}, errors.Wrap(err, "write gridfs upload")
	}
	if err := stream.Close(); err != nil {
		return Info{}, errors.Wrap(err, "finish gridfs upload")
	}
	id, ok := stream.FileID.(primitive.ObjectID)
	if !ok {
		return Info{}, errors.New("gridfs returned a non-ObjectID file id")
	}
	return Info{Key: id.Hex(), Filename: filename, MimeType: mimeType, Size: size}, nil
}

func (s *GridFSStore) Open(ctx context.Context, key string) (io.ReadCloser, Info, error) {
	id, err := primitive.ObjectIDFromHex(key)
	if err != nil {
		return nil, Info{}, ErrInvalidKey
	}
	stream, err := s.bucket.OpenDownloadStream(id)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, Info{}, ErrNotFound
	}
	if err != nil {
		return nil, Info{}, errors.Wrap(err, "open gridfs download")
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(dl)
	}
	file := stream.GetFile()
	info := Info{Key: key, Filename: file.Name, Size: file.Length}
	var metadata bson.M
	if file.Metadata != nil && bson.Unmarshal(file.Metadata, &metadata) == nil {
		if mt, ok := metadata["mime_type"].(string); ok {
			info.MimeType = mt
		}
	}
	if info.MimeType == "" {
		info.MimeType = ContentType(file.Name)
	}
	return stream, info, nil
}

func (s *GridFSStore) Delete(ctx context.Context, key string) error {
	id, err := primitive.ObjectIDFromHex(key)
	if err != nil {
		return ErrInvalidKey
	}
	err = s.bucket.DeleteContext(ctx, id)
	if err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return errors.Wrap(err, "delete gridfs file")
	}
	return nil
}
