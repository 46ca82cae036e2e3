package repository

import (
	"eduquiz_backend/internal/model"

	"gorm.io/gorm"
)

type ClassRepository struct {
	DB *gorm.DB
}

func NewClassRepository(db *gorm.DB) *ClassRepository {
	return &ClassRepository{DB: db}
}

func (r *ClassRepository) Create(class *model.Class) error {
	return r.DB.Create(class).Error
}

func (r *ClassRepository) FindByID(id string) (*model.Class, error) {
	var class model.Class
	err := r.DB.First(&class, "id = ?", id).Error
	return &class, err
}

func (r *ClassRepository) Update(class *model.Class) error {
	return r.DB.Save(class).Error
}

func (r *ClassRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("class_id = ?", id).Delete(&model.ClassEnrollment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Class{}, "id = ?", id).Error
	})
}

func (r *ClassRepository) ListByTeacher(teacherID uint) ([]model.Class, error) {
	var classes []model.Class
	err := r.DB.Where("teacher_id = ?", teacherID).Order("created_at desc").Find(&classes).Error
	return classes, err
}

func (r *ClassRepository) Enroll(classID string, studentID uint) error {
	var count int64
	if err := r.DB.Model(&model.ClassEnrollment{}).
		Where("class_id = ? AND student_id = ?", classID, studentID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.DB.Create(&model.ClassEnrollment{ClassID: classID, StudentID: studentID}).Error
}

func (r *ClassRepository) Unenroll(classID string, studentID uint) error {
	return r.DB.Where("class_id = ? AND student_id = ?", classID, studentID).
		Delete(&model.ClassEnrollment{}).Error
}

func (r *ClassRepository) IsEnrolled(classID string, studentID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.ClassEnrollment{}).
		Where("class_id = ? AND student_id = ?", classID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *ClassRepository) ListStudents(classID string) ([]model.User, error) {
	var students []model.User
	err := r.DB.Table("users u").
		Joins("JOIN class_enrollments e ON e.student_id = u.id").
		Where("e.class_id = ? AND e.deleted_at IS NULL", classID).
		Find(&students).Error
	return students, err
}

func (r *ClassRepository) ListClassIDsForStudent(studentID uint) ([]string, error) {
	var ids []string
	err := r.DB.Model(&model.ClassEnrollment{}).
		Where("student_id = ?", studentID).
		Pluck("class_id", &ids).Error
	return ids, err
}
