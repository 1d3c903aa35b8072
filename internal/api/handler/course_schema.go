package handler

type createCourseRequest struct {
	Title       string   `json:"title"       validate:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price"       validate:"gte=0"`
	Videos      []string `json:"videos"`
}

// updateCourseRequest is a partial patch: nil fields are left untouched.
type updateCourseRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price" validate:"omitempty,gte=0"`
	Videos      *[]string `json:"videos"`
}

type courseLessonsResponse struct {
	Title  string   `json:"title"`
	Videos []string `json:"videos"`
}
