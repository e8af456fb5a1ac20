// Package transfer persists an uploaded temporary file to its destination.
//
// Three transferers are provided. Move renames the file and falls back to a
// copy when source and destination live on different devices. Copy performs a
// buffered copy that stops when the context is canceled. S3 uploads the file to
// a bucket and can answer whether an object already exists, which lets an
// uploader run its overwrite check against the bucket instead of the local disk.
//
// All of them satisfy upload.Transferer:
//
//	u := upload.New(files, upload.WithTransfer(transfer.Copy()))
//
//	s3t, err := transfer.NewS3(ctx, transfer.S3Config{Bucket: "media", Region: "eu-central-1"})
//	if err != nil {
//		return err
//	}
//	u := upload.New(files, upload.WithTransfer(s3t))
//
// ByName resolves the local transferers from configuration values.
package transfer
