package user

type CreateUserRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Role      string `json:"role" binding:"required,oneof=FACULTY HOD DIRECTOR"`
}

type ResetLeavesRequest struct {
	Username string `json:"username"`
}

type UserResponse struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Role          string `json:"role"`
	CasualLeave   int    `json:"casualLeave"`
	MedicalLeave  int    `json:"medicalLeave"`
	EarnedLeave   int    `json:"earnedLeave"`
	AcademicLeave int    `json:"academicLeave"`
	CreatedAt     string `json:"createdAt"`
}
