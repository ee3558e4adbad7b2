package blogservice

import (
	"github.com/traveltales/journal/internal/common"
)

const (
	TitleMaxLength  = 100
	ReviewMaxLength = 1000
)

func validateTitle(v *common.Validator, title string) {
	v.Check(v.CheckStringLength(title, 0, TitleMaxLength), "name", "must not be more than 100 characters long")
}

func validateLocation(v *common.Validator, location string) {
	v.Check(location != "", "location", "must be provided")
}

func validateReview(v *common.Validator, review string) {
	v.Check(review != "", "review", "must be provided")
	v.Check(v.CheckStringLength(review, 0, ReviewMaxLength), "review", "must not be more than 1000 characters long")
}

func validateContinent(v *common.Validator, continent Continent) {
	if continent == "" {
		return
	}
	v.Check(isContinent(continent), "continent", "must be a valid continent")
}

func validateID(v *common.Validator, id common.ID, name string) {
	v.Check(id.Valid(), name, "must be greater than zero")
}

func validatePostID(v *common.Validator, id string) {
	v.Check(id != "", "id", "must be provided")
}

func validatePostInput(v *common.Validator, in PostInput) {
	validateTitle(v, in.Name)
	validateLocation(v, in.Location)
	validateReview(v, in.Review)
	validateContinent(v, in.Continent)
}

// Validate checks the filter values a caller may have supplied.
func (c Criteria) Validate() error {
	v := common.NewValidator()
	v.Check(c.MinRating >= 0 && c.MinRating <= RatingMax, "min_rating", "must be between 0 and 10")
	validateContinent(v, c.Continent)
	if c.Social != "" {
		v.Check(v.PermittedValue(string(c.Social), string(SocialAll), string(SocialFollowing), string(SocialFollowers)), "social", "must be one of all, following or followers")
	}
	if !v.Valid() {
		return v.ValidationError()
	}
	return nil
}

func isContinent(c Continent) bool {
	for _, known := range Continents {
		if c == known {
			return true
		}
	}
	return false
}
