// Package file provides HTTP handlers for file-related operations.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"CareerFindr-backend/internal/database"
	"CareerFindr-backend/internal/model"
	"CareerFindr-backend/internal/utilities"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FileController handles file related endpoints
type FileController struct {
	DB       *database.DBinstanceStruct
	Storage  StorageClient
	MaxBytes int64
}

const (
	documentObjectPrefix = "documents"
	resumeObjectPrefix   = "resumes"
	logoObjectPrefix     = "logos"

	// DefaultMaxBytes is upload limit when controller isn't given one
	DefaultMaxBytes int64 = 5 << 20
)

var (
	documentExtensions = map[string]bool{
		".pdf":  true,
		".doc":  true,
		".docx": true,
		".jpg":  true,
		".jpeg": true,
		".png":  true,
	}
	resumeExtensions = map[string]bool{".pdf": true}
	imageExtensions  = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
	}
)

// NewFileController creates a new instance of FileController. Storage may be nil,
// in which case file content is kept in database.
func NewFileController(db *database.DBinstanceStruct, storage StorageClient, maxBytes int64) *FileController {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &FileController{
		DB:       db,
		Storage:  storage,
		MaxBytes: maxBytes,
	}
}

// DocumentResponse is uploaded file with its human readable size
type DocumentResponse struct {
	model.File
	SizeLabel string `json:"size_label"`
}

// uploadError carries HTTP status of failed upload
type uploadError struct {
	status int
	msg    string
}

func (e *uploadError) Error() string { return e.msg }

// readUpload validate multipart field and read its content
func (jc *FileController) readUpload(c *gin.Context, field string, allowed map[string]bool) (*multipart.FileHeader, []byte, string, error) {
	rawFile, err := c.FormFile(field)
	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		return nil, nil, "", &uploadError{http.StatusRequestEntityTooLarge, err.Error()}
	}
	if err != nil {
		return nil, nil, "", &uploadError{http.StatusBadRequest, fmt.Sprintf("Failed to retrieve file: %s", err.Error())}
	}

	if rawFile.Size > jc.MaxBytes {
		return nil, nil, "", &uploadError{
			http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File size %s exceeds limit of %s", utilities.FormatFileSize(rawFile.Size), utilities.FormatFileSize(jc.MaxBytes)),
		}
	}

	extension := strings.ToLower(filepath.Ext(rawFile.Filename))
	if !allowed[extension] {
		return nil, nil, "", &uploadError{
			http.StatusUnsupportedMediaType,
			fmt.Sprintf("Unsupported file extension: %s", extension),
		}
	}

	f, err := rawFile.Open()
	if err != nil {
		return nil, nil, "", &uploadError{http.StatusInternalServerError, "Cannot open file"}
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("failed to close uploaded file: %v", err)
		}
	}()

	fileBytes, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, "", &uploadError{http.StatusInternalServerError, "Cannot read file"}
	}

	return rawFile, fileBytes, extension, nil
}

func writeUploadError(c *gin.Context, err error) {
	var ue *uploadError
	if errors.As(err, &ue) {
		c.JSON(ue.status, utilities.ErrorResponse{Error: ue.msg})
		return
	}
	c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: err.Error()})
}

// UploadDocument stores supporting document that student can attach to application.
// @Summary Upload supporting document
// @Description Only file that smaller than 5 MB with .pdf, .doc, .docx, .jpg, .jpeg or .png extension is permitted
// @Tags File
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param document formData file true "Upload your document"
// @Success 201 {object} utilities.SuccessResponse{data=DocumentResponse} "Successfully upload document"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, or missing file"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 413 {object} utilities.ErrorResponse "File size is larger than 5 MB"
// @Failure 415 {object} utilities.ErrorResponse "File extension is not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Database or storage error"
// @Router /file/document [post]
func (jc *FileController) UploadDocument(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	header, fileBytes, extension, err := jc.readUpload(c, "document", documentExtensions)
	if err != nil {
		writeUploadError(c, err)
		return
	}

	file := model.File{
		OwnerID: &user.ID,
		Name:    filepath.Base(header.Filename),
		Size:    int64(len(fileBytes)),
	}
	if err := jc.persistFileData(c.Request.Context(), &file, fileBytes, extension, documentObjectPrefix); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to store document: %s", err.Error()),
		})
		return
	}

	if err := jc.DB.WithContext(c.Request.Context()).Create(&file).Error; err != nil {
		jc.discardObject(c.Request.Context(), &file)
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save document: %s", err.Error()),
		})
		return
	}

	utilities.SendSuccess(c, http.StatusCreated, "Document uploaded", DocumentResponse{
		File:      file,
		SizeLabel: utilities.FormatFileSize(file.Size),
	})
}

// UploadResume function handles the process of uploading a resume file for a student and updating
// the student's profile in the database.
// @Summary Upload resume file for student
// @Description Only file that smaller than 5 MB with .pdf extension is permitted
// @Tags Student
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param resume formData file true "Upload your resume file"
// @Success 200 {object} model.StudentProfile "Successfully upload resume"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 413 {object} utilities.ErrorResponse "File size is larger than 5 MB"
// @Failure 415 {object} utilities.ErrorResponse "File extension is not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /student/profile/resume [post]
func (jc *FileController) UploadResume(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	student := model.StudentProfile{}
	if err := jc.DB.Preload("User").Preload("Resume").Where("user_id = ?", user.ID).First(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve user information from database: %s", err.Error()),
		})
		return
	}

	header, fileBytes, extension, err := jc.readUpload(c, "resume", resumeExtensions)
	if err != nil {
		writeUploadError(c, err)
		return
	}

	if student.Resume == nil {
		student.Resume = &model.File{}
	}
	student.Resume.OwnerID = &user.ID
	student.Resume.Name = filepath.Base(header.Filename)
	student.Resume.Size = int64(len(fileBytes))
	previous, err := jc.replaceFile(c.Request.Context(), student.Resume, fileBytes, extension, resumeObjectPrefix)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to store resume: %s", err.Error()),
		})
		return
	}

	if err := jc.saveReplaced(c.Request.Context(), student.Resume, previous, func() error {
		return jc.DB.Session(&gorm.Session{FullSaveAssociations: true}).Save(&student).Error
	}); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update user information: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, student)
}

// UploadInstitutionLogo function handles institution's logo uploading.
// @Summary Upload logo file for institution
// @Description Only file that smaller than 5 MB with .jpg, .jpeg, or .png extension is permitted
// @Tags Institution
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param logo formData file true "Upload your logo file"
// @Success 200 {object} model.Institution "Successfully upload logo"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as institution"
// @Failure 413 {object} utilities.ErrorResponse "File size is larger than 5 MB"
// @Failure 415 {object} utilities.ErrorResponse "File extension is not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /institution/profile/logo [post]
func (jc *FileController) UploadInstitutionLogo(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	institution := model.Institution{}
	if err := jc.DB.Preload("User").Preload("Logo").Where("user_id = ?", user.ID).First(&institution).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve user information from database: %s", err.Error()),
		})
		return
	}

	if institution.Logo == nil {
		institution.Logo = &model.File{}
	}
	previous, ok := jc.uploadLogo(c, user, institution.Logo)
	if !ok {
		return
	}

	if err := jc.saveReplaced(c.Request.Context(), institution.Logo, previous, func() error {
		return jc.DB.Session(&gorm.Session{FullSaveAssociations: true}).Save(&institution).Error
	}); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update user information: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, institution)
}

// UploadCompanyLogo function handles company's logo uploading.
// @Summary Upload logo file for company
// @Description Only file that smaller than 5 MB with .jpg, .jpeg, or .png extension is permitted
// @Tags Company
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param logo formData file true "Upload your logo file"
// @Success 200 {object} model.Company "Successfully upload logo"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as company"
// @Failure 413 {object} utilities.ErrorResponse "File size is larger than 5 MB"
// @Failure 415 {object} utilities.ErrorResponse "File extension is not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /company/profile/logo [post]
func (jc *FileController) UploadCompanyLogo(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	company := model.Company{}
	if err := jc.DB.Preload("User").Preload("Logo").Where("user_id = ?", user.ID).First(&company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve user information from database: %s", err.Error()),
		})
		return
	}

	if company.Logo == nil {
		company.Logo = &model.File{}
	}
	previous, ok := jc.uploadLogo(c, user, company.Logo)
	if !ok {
		return
	}

	if err := jc.saveReplaced(c.Request.Context(), company.Logo, previous, func() error {
		return jc.DB.Session(&gorm.Session{FullSaveAssociations: true}).Save(&company).Error
	}); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update user information: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, company)
}

// uploadLogo read logo field into f and return the object f referenced before.
// It writes error response and return false on failure.
func (jc *FileController) uploadLogo(c *gin.Context, user model.User, f *model.File) (*string, bool) {
	header, fileBytes, extension, err := jc.readUpload(c, "logo", imageExtensions)
	if err != nil {
		writeUploadError(c, err)
		return nil, false
	}

	f.OwnerID = &user.ID
	f.Name = filepath.Base(header.Filename)
	f.Size = int64(len(fileBytes))
	previous, err := jc.replaceFile(c.Request.Context(), f, fileBytes, extension, logoObjectPrefix)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to store logo: %s", err.Error()),
		})
		return nil, false
	}
	return previous, true
}

// GetFile function retrieves a file from the database and sends it as a downloadable attachment in
// the response.
// @Summary Retrieve dowloadable attachment
// @Description Owner, admin, reviewer of application that attach the file, or anyone for logo
// @Tags File
// @Produce octet-stream
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "ID of wanted file"
// @Success 200 {string} binary "Successfully retrieve file"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not allowed to access this file"
// @Failure 404 {object} utilities.ErrorResponse "Given file id not found"
// @Failure 500 {object} utilities.ErrorResponse "Fail to send file content"
// @Router /file/{id} [get]
func (jc *FileController) GetFile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var file model.File
	if err := jc.DB.First(&file, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "File not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve file: %s", err.Error()),
		})
		return
	}

	allowed, err := jc.canAccess(c.Request.Context(), user, &file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to check file permission: %s", err.Error()),
		})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "You are not allowed to access this file"})
		return
	}

	jc.writeFileResponse(c, &file)
}

// DeleteFile removes document that is not used anywhere.
// @Summary Delete uploaded document
// @Description Only owner can delete, and only when file isn't attached to application or profile
// @Tags File
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "ID of file"
// @Success 200 {object} utilities.MessageResponse "File deleted"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not owner of the file"
// @Failure 404 {object} utilities.ErrorResponse "File not found"
// @Failure 409 {object} utilities.ErrorResponse "File is still in use"
// @Failure 500 {object} utilities.ErrorResponse "Database or storage error"
// @Router /file/{id} [delete]
func (jc *FileController) DeleteFile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}
	ctx := c.Request.Context()

	var file model.File
	if err := jc.DB.WithContext(ctx).First(&file, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "File not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve file: %s", err.Error()),
		})
		return
	}

	if file.OwnerID == nil || *file.OwnerID != user.ID {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "You are not allowed to delete this file"})
		return
	}

	inUse, err := jc.fileInUse(ctx, file.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to check file usage: %s", err.Error()),
		})
		return
	}
	if inUse {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: "File is attached to an application or profile"})
		return
	}

	if err := jc.DB.WithContext(ctx).Delete(&file).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to delete file: %s", err.Error()),
		})
		return
	}
	jc.discardObject(ctx, &file)

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "File deleted"})
}

// canAccess decide whether user may download file
func (jc *FileController) canAccess(ctx context.Context, user model.User, file *model.File) (bool, error) {
	if user.Role == model.RoleAdmin || (file.OwnerID != nil && *file.OwnerID == user.ID) {
		return true, nil
	}

	db := jc.DB.WithContext(ctx)
	var count int64

	// logo is public
	if err := db.Model(&model.Institution{}).Where("logo_id = ?", file.ID).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := db.Model(&model.Company{}).Where("logo_id = ?", file.ID).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	// reviewer can read documents and resume of students who applied to them
	if err := db.Table("application_documents").
		Joins("JOIN applications ON applications.id = application_documents.application_id").
		Where("application_documents.file_id = ? AND applications.owner_id = ?", file.ID, user.ID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := db.Model(&model.StudentProfile{}).
		Joins("JOIN applications ON applications.student_id = student_profiles.user_id").
		Where("student_profiles.resume_id = ? AND applications.owner_id = ?", file.ID, user.ID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (jc *FileController) fileInUse(ctx context.Context, id int) (bool, error) {
	db := jc.DB.WithContext(ctx)
	var count int64
	if err := db.Table("application_documents").Where("file_id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := db.Model(&model.StudentProfile{}).Where("resume_id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	for _, m := range []interface{}{&model.Institution{}, &model.Company{}} {
		if err := db.Model(m).Where("logo_id = ?", id).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (jc *FileController) writeFileResponse(c *gin.Context, file *model.File) {
	c.Writer.Header().Set("Content-Disposition", "attachment; filename="+fmt.Sprint(file.ID)+file.Extension)
	c.Writer.Header().Set("Content-Type", "application/octet-stream")

	if file.StorageObjectName != nil {
		if jc.Storage == nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: "Cloud storage is disabled while the requested file is stored remotely",
			})
			return
		}
		reader, size, err := jc.Storage.DownloadFile(c.Request.Context(), *file.StorageObjectName)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrObjectNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to download file from storage: %s", err.Error()),
			})
			return
		}
		defer func() {
			if err := reader.Close(); err != nil {
				log.Printf("failed to close storage reader: %v", err)
			}
		}()

		if size > 0 {
			c.Writer.Header().Set("Content-Length", fmt.Sprint(size))
		}
		if _, err := io.Copy(c.Writer, reader); err != nil {
			jc.handleWriterError(c, err)
		}
		return
	}

	c.Writer.Header().Set("Content-Length", fmt.Sprint(len(file.Content)))
	if _, err := c.Writer.Write(file.Content); err != nil {
		jc.handleWriterError(c, err)
	}
}

func (jc *FileController) handleWriterError(c *gin.Context, err error) {
	log.Printf("failed to send file content: %v", err)
	if !c.Writer.Written() {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: "Failed to send file content",
		})
	} else {
		c.Abort()
	}
}

// persistFileData put content in storage when it's configured, otherwise in file.Content
func (jc *FileController) persistFileData(ctx context.Context, file *model.File, fileBytes []byte, extension, prefix string) error {
	file.Extension = extension
	if jc.Storage == nil {
		file.Content = fileBytes
		file.StorageObjectName = nil
		return nil
	}

	objectName := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), extension)
	if err := jc.Storage.UploadFile(ctx, objectName, bytes.NewReader(fileBytes), int64(len(fileBytes))); err != nil {
		return err
	}

	file.StorageObjectName = &objectName
	file.Content = nil
	return nil
}

// replaceFile persist new content into file and return the object it referenced before.
// Caller removes that object once the new reference is saved.
func (jc *FileController) replaceFile(ctx context.Context, file *model.File, fileBytes []byte, extension, prefix string) (*string, error) {
	var previous *string
	if file.StorageObjectName != nil {
		old := *file.StorageObjectName
		previous = &old
	}

	if err := jc.persistFileData(ctx, file, fileBytes, extension, prefix); err != nil {
		return nil, err
	}
	return previous, nil
}

// saveReplaced run save, then delete the previous object. When save fails the new object is
// deleted instead and the record keeps pointing at the previous one.
func (jc *FileController) saveReplaced(ctx context.Context, file *model.File, previous *string, save func() error) error {
	if err := save(); err != nil {
		jc.discardObject(ctx, file)
		return err
	}
	if previous != nil && jc.Storage != nil {
		if err := jc.Storage.DeleteFile(ctx, *previous); err != nil {
			log.Printf("failed to delete replaced object %s: %v", *previous, err)
		}
	}
	return nil
}

// discardObject remove stored object of file that is no longer recorded
func (jc *FileController) discardObject(ctx context.Context, file *model.File) {
	if file.StorageObjectName == nil || jc.Storage == nil {
		return
	}
	if err := jc.Storage.DeleteFile(ctx, *file.StorageObjectName); err != nil {
		log.Printf("failed to delete object %s: %v", *file.StorageObjectName, err)
	}
}
