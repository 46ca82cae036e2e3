package service

import (
	"eduquiz_backend/internal/model"
	"eduquiz_backend/internal/repository"
	"eduquiz_backend/internal/util"
)

type ClassService struct {
	ClassRepo *repository.ClassRepository
	UserRepo  *repository.UserRepository
}

func NewClassService(classRepo *repository.ClassRepository, userRepo *repository.UserRepository) *ClassService {
	return &ClassService{
		ClassRepo: classRepo,
		UserRepo:  userRepo,
	}
}

func (s *ClassService) CreateClass(teacherID uint, name, description string) (*model.Class, error) {
	class := &model.Class{
		Name:        name,
		Description: description,
		TeacherID:   teacherID,
	}
	if err := s.ClassRepo.Create(class); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *ClassService) UpdateClass(teacherID uint, classID, name, description string) (*model.Class, error) {
	class, err := s.ownedClass(teacherID, classID)
	if err != nil {
		return nil, err
	}
	class.Name = name
	class.Description = description
	if err := s.ClassRepo.Update(class); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *ClassService) DeleteClass(teacherID uint, classID string) error {
	if _, err := s.ownedClass(teacherID, classID); err != nil {
		return err
	}
	return s.ClassRepo.Delete(classID)
}

func (s *ClassService) ListClasses(teacherID uint) ([]model.Class, error) {
	return s.ClassRepo.ListByTeacher(teacherID)
}

// EnrollStudent is idempotent: enrolling an already-enrolled student is a
// no-op.
func (s *ClassService) EnrollStudent(teacherID uint, classID string, studentID uint) error {
	if _, err := s.ownedClass(teacherID, classID); err != nil {
		return err
	}
	student, err := s.UserRepo.FindByID(studentID)
	if err != nil {
		return util.ErrUserNotFound
	}
	if student.Role != model.Student {
		return util.ErrPermissionDenied
	}
	return s.ClassRepo.Enroll(classID, studentID)
}

func (s *ClassService) UnenrollStudent(teacherID uint, classID string, studentID uint) error {
	if _, err := s.ownedClass(teacherID, classID); err != nil {
		return err
	}
	return s.ClassRepo.Unenroll(classID, studentID)
}

func (s *ClassService) ListStudents(teacherID uint, classID string) ([]model.User, error) {
	if _, err := s.ownedClass(teacherID, classID); err != nil {
		return nil, err
	}
	return s.ClassRepo.ListStudents(classID)
}

func (s *ClassService) ownedClass(teacherID uint, classID string) (*model.Class, error) {
	class, err := s.ClassRepo.FindByID(classID)
	if err != nil {
		return nil, util.ErrClassNotFound
	}
	if class.TeacherID != teacherID {
		return nil, util.ErrPermissionDenied
	}
	return class, nil
}
