package model

// swagger:model Class
type Class struct {
	UUIDBase
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	TeacherID   uint   `gorm:"index;type:bigint unsigned" json:"teacherId"`
	Teacher     *User  `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
}

func (Class) TableName() string {
	return "classes"
}

// ClassEnrollment links one student to one class.
type ClassEnrollment struct {
	BaseModel
	ClassID   string `gorm:"index:idx_class_student,unique;type:varchar(36)" json:"classId"`
	StudentID uint   `gorm:"index:idx_class_student,unique;type:bigint unsigned" json:"studentId"`
	Student   *User  `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (ClassEnrollment) TableName() string {
	return "class_enrollments"
}
