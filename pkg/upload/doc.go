// Package upload validates a single uploaded file and persists it.
//
// An Uploader is built around the incoming files of one request (already
// decoded into IncomingFile records by the transport layer). It is configured
// with setters in any order and then driven once by Save:
//
//	u := upload.New(files, upload.WithLogger(log))
//	_ = u.SetInput("avatar")
//	_ = u.SetDestination("/srv/uploads/avatars", true)
//	_ = u.AllowMIMEType("image")
//	_ = u.SetMaxFileSize("2M")
//	u.SetAutoFilename()
//
//	info, err := u.Save(ctx)
//	switch {
//	case errors.Is(err, upload.ErrMIMETypeNotAllowed):
//		// reject with 415
//	case errors.Is(err, upload.ErrFileTooLarge):
//		// reject with 413
//	case err != nil:
//		// inspect info.Log for the decision trail
//	}
//
// # Pipeline
//
// Save runs these steps in order and stops at the first failure:
//
//  1. look up the bound input in the incoming files
//  2. resolve the final filename ("%s" in a filename pattern becomes the
//     original extension)
//  3. fill the result record
//  4. check the destination: an occupied path is rejected unless overwriting
//     is allowed
//  5. run the before callback
//  6. check the declared MIME type against the mime policy
//  7. check the declared size against the configured limit
//  8. transfer the temporary file to the destination
//  9. run the after callback, whatever the transfer status
//
// Every step is written to the audit log returned in Result.Log and, when a
// logger is configured, to the process log.
//
// For local destinations with overwriting disabled, step 4 reserves the target
// path with an exclusive create, so two uploads racing for one name cannot both
// pass the check. The reservation is removed if the upload fails later.
//
// # Transfers
//
// A Transferer moves bytes from the temporary location to the destination. The
// default is transfer.Move; transfer.Copy and transfer.S3 are alternatives and any
// function can be adapted with TransferFunc. A Transferer that also implements
// ExistenceChecker answers step 4 itself, which is how remote stores report
// occupied keys.
//
// An Uploader handles exactly one attempt and is not safe for concurrent use.
package upload
