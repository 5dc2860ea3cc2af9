package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campingchile/camping-server/middleware"
	"github.com/campingchile/camping-server/models"
	"github.com/campingchile/camping-server/utils"
)

type ReservationController struct {
	DB *gorm.DB
}

func NewReservationController(db *gorm.DB) *ReservationController {
	return &ReservationController{DB: db}
}

var (
	errSiteNotFound    = errors.New("site not found")
	errSiteUnavailable = errors.New("site is not available")
	errCapacity        = errors.New("number_of_people exceeds site capacity")
	errAlreadyBooked   = errors.New("site is already reserved for those dates")
)

type CreateReservationReq struct {
	SiteID           uint     `json:"site_id" binding:"required"`
	StartDate        string   `json:"start_date" binding:"required"`
	EndDate          string   `json:"end_date" binding:"required"`
	NumberOfPeople   int      `json:"number_of_people" binding:"required,gt=0"`
	SelectedServices []string `json:"selected_services"`
}

// POST /reservation/
//
// Prices and persists a reservation. The whole check-and-insert runs in
// one transaction that locks the site row, so two concurrent bookings
// for the same window cannot both pass the overlap check.
func (rc *ReservationController) Create(c *gin.Context) {
	user := c.MustGet(middleware.CtxUser).(models.User)

	var req CreateReservationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	nights := nightsBetween(start, end)
	if nights <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be after start_date"})
		return
	}

	var created models.Reservation
	err = rc.DB.Transaction(func(tx *gorm.DB) error {
		site, camping, err := rc.lockSite(tx, req.SiteID)
		if err != nil {
			return err
		}
		if site.Status != models.SiteAvailable {
			return errSiteUnavailable
		}
		if req.NumberOfPeople > site.MaxOfPeople {
			return errCapacity
		}

		servicesTotal, resolved, err := resolveServices(&camping, req.SelectedServices)
		if err != nil {
			return err
		}

		booked, err := siteBooked(tx, site.ID, 0, start, end)
		if err != nil {
			return err
		}
		if booked {
			return errAlreadyBooked
		}

		selected, err := stringsToJSON(resolved)
		if err != nil {
			return err
		}
		created = models.Reservation{
			UserID:           user.ID,
			SiteID:           site.ID,
			StartDate:        start,
			EndDate:          end,
			NumberOfPeople:   req.NumberOfPeople,
			SelectedServices: selected,
			TotalAmount:      float64(nights)*site.Price + servicesTotal,
			ConfirmationCode: uuid.NewString(),
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		rc.writeReservationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GET /reservation/
func (rc *ReservationController) List(c *gin.Context) {
	var reservations []models.Reservation
	if err := rc.DB.Find(&reservations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list reservations"})
		return
	}
	c.JSON(http.StatusOK, reservations)
}

// GET /reservation/user/:user_id/reservations
//
// Users see their own reservations; admins see anyone's.
func (rc *ReservationController) ListByUser(c *gin.Context) {
	user := c.MustGet(middleware.CtxUser).(models.User)

	userID, err := atoiPositive(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if user.RoleID != models.RoleAdmin && user.ID != uint(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	var reservations []models.Reservation
	if err := rc.DB.Preload("Site").Where("user_id = ?", userID).Find(&reservations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list reservations"})
		return
	}
	c.JSON(http.StatusOK, reservations)
}

type UpdateReservationReq struct {
	StartDate        *string  `json:"start_date"`
	EndDate          *string  `json:"end_date"`
	NumberOfPeople   *int     `json:"number_of_people"`
	SelectedServices []string `json:"selected_services"`
}

// PUT /reservation/:reservation_id
//
// Date, party or service changes re-run the same validation and pricing
// as creation; the stored total always matches the stored fields.
func (rc *ReservationController) Update(c *gin.Context) {
	user := c.MustGet(middleware.CtxUser).(models.User)

	var req UpdateReservationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var updated models.Reservation
	err := rc.DB.Transaction(func(tx *gorm.DB) error {
		var reservation models.Reservation
		if err := tx.First(&reservation, "id = ?", c.Param("reservation_id")).Error; err != nil {
			return err
		}
		if user.RoleID != models.RoleAdmin && reservation.UserID != user.ID {
			return errNotOwner
		}

		start, end := reservation.StartDate, reservation.EndDate
		if req.StartDate != nil {
			t, err := parseDate(*req.StartDate)
			if err != nil {
				return errBadDate{err}
			}
			start = t
		}
		if req.EndDate != nil {
			t, err := parseDate(*req.EndDate)
			if err != nil {
				return errBadDate{err}
			}
			end = t
		}
		nights := nightsBetween(start, end)
		if nights <= 0 {
			return errBadDate{errors.New("end_date must be after start_date")}
		}

		people := reservation.NumberOfPeople
		if req.NumberOfPeople != nil {
			people = *req.NumberOfPeople
		}

		site, camping, err := rc.lockSite(tx, reservation.SiteID)
		if err != nil {
			return err
		}
		if people <= 0 || people > site.MaxOfPeople {
			return errCapacity
		}

		services := reservation.ServiceNames()
		if req.SelectedServices != nil {
			services = req.SelectedServices
		}
		servicesTotal, resolved, err := resolveServices(&camping, services)
		if err != nil {
			return err
		}

		booked, err := siteBooked(tx, site.ID, reservation.ID, start, end)
		if err != nil {
			return err
		}
		if booked {
			return errAlreadyBooked
		}

		reservation.StartDate = start
		reservation.EndDate = end
		reservation.NumberOfPeople = people
		reservation.SelectedServices, _ = stringsToJSON(resolved)
		reservation.TotalAmount = float64(nights)*site.Price + servicesTotal

		if err := tx.Save(&reservation).Error; err != nil {
			return err
		}
		updated = reservation
		return nil
	})
	if err != nil {
		rc.writeReservationError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

type DeleteReservationReq struct {
	Password string `json:"password" binding:"required"`
}

// DELETE /reservation/:reservation_id
//
// Deletion is permanent and therefore asks for the caller's password
// again.
func (rc *ReservationController) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CtxUser).(models.User)

	var req DeleteReservationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password confirmation required"})
		return
	}
	if !utils.CheckPassword(user.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		return
	}

	var reservation models.Reservation
	if err := rc.DB.First(&reservation, "id = ?", c.Param("reservation_id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
		return
	}
	if user.RoleID != models.RoleAdmin && reservation.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	if err := rc.DB.Delete(&reservation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete reservation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reservation deleted"})
}

// GET /reservation/camping/:camping_id/export
//
// Downloads the camping's reservations as an xlsx workbook for its
// provider.
func (rc *ReservationController) Export(c *gin.Context) {
	user := c.MustGet(middleware.CtxUser).(models.User)

	var camping models.Camping
	if err := rc.DB.First(&camping, "id = ?", c.Param("camping_id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "camping not found"})
		return
	}
	if user.RoleID != models.RoleAdmin && camping.ProviderID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	var reservations []models.Reservation
	err := rc.DB.Preload("User").Preload("Site").
		Joins("JOIN site ON site.id = reservation.site_id").
		Where("site.camping_id = ?", camping.ID).
		Order("reservation.start_date").
		Find(&reservations).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load reservations"})
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Reservations"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"id", "confirmation_code", "site", "customer", "start_date", "end_date", "people", "services", "total_amount"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, r := range reservations {
		siteName := ""
		if r.Site != nil {
			siteName = r.Site.Name
		}
		customer := ""
		if r.User != nil {
			customer = r.User.FirstName + " " + r.User.LastName
		}
		values := []interface{}{
			r.ID,
			r.ConfirmationCode,
			siteName,
			customer,
			r.StartDate.Format(dateLayout),
			r.EndDate.Format(dateLayout),
			r.NumberOfPeople,
			strings.Join(r.ServiceNames(), ", "),
			r.TotalAmount,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="reservations_camping_%d.xlsx"`, camping.ID))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not write export"})
	}
}

// lockSite loads a site and its camping inside the transaction. On
// Postgres the site row is locked FOR UPDATE so concurrent bookings
// serialize; SQLite serializes writers on its own and rejects the
// clause.
func (rc *ReservationController) lockSite(tx *gorm.DB, siteID uint) (models.Site, models.Camping, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var site models.Site
	if err := q.First(&site, siteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Site{}, models.Camping{}, errSiteNotFound
		}
		return models.Site{}, models.Camping{}, err
	}

	var camping models.Camping
	if err := tx.First(&camping, site.CampingID).Error; err != nil {
		return models.Site{}, models.Camping{}, err
	}
	return site, camping, nil
}

// siteBooked runs the symmetric overlap check against persisted
// reservations, optionally excluding one (for updates).
func siteBooked(tx *gorm.DB, siteID, excludeID uint, start, end time.Time) (bool, error) {
	q := tx.Model(&models.Reservation{}).
		Where("site_id = ? AND start_date < ? AND end_date > ?", siteID, end, start)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var errNotOwner = errors.New("access denied")

type errBadDate struct{ err error }

func (e errBadDate) Error() string { return e.err.Error() }

func (rc *ReservationController) writeReservationError(c *gin.Context, err error) {
	var unknown unknownServiceError
	var badDate errBadDate
	switch {
	case errors.Is(err, errSiteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
	case errors.Is(err, errNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, errAlreadyBooked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, errSiteUnavailable), errors.Is(err, errCapacity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &unknown):
		c.JSON(http.StatusBadRequest, gin.H{"error": unknown.Error()})
	case errors.As(err, &badDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": badDate.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process reservation"})
	}
}
