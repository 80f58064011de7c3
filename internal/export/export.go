package export

import (
	"io"

	"github.com/exidealers/marketplace/internal/domain"
	"github.com/exidealers/marketplace/internal/pricing"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const inventorySheet = "Inventory"

var inventoryHeader = []interface{}{
	"ID", "Make", "Model", "Year", "Price", "Price (numeric)", "Mileage", "Location",
	"Condition", "Body Type", "Transmission", "Fuel Type", "Drive Type", "Status",
	"Seller", "Seller Email", "Seller Phone", "Images", "Listed At",
}

// Subscribers writes newsletter subscribers as CSV
func Subscribers(w io.Writer, rows []domain.NewsletterSubscriber) error {
	return errors.Wrap(gocsv.Marshal(&rows, w), "export subscribers")
}

// Enquiries writes car enquiries as CSV
func Enquiries(w io.Writer, rows []domain.CarEnquiry) error {
	return errors.Wrap(gocsv.Marshal(&rows, w), "export enquiries")
}

// Messages writes contact messages as CSV
func Messages(w io.Writer, rows []domain.ContactMessage) error {
	return errors.Wrap(gocsv.Marshal(&rows, w), "export messages")
}

// Inventory writes the car inventory as an XLSX workbook. Unknown prices leave the
// numeric column empty.
func Inventory(w io.Writer, cars []domain.Car) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", inventorySheet); err != nil {
		return errors.Wrap(err, "rename sheet")
	}
	if err := f.SetSheetRow(inventorySheet, "A1", &inventoryHeader); err != nil {
		return errors.Wrap(err, "write header")
	}
	for i, c := range cars {
		var numeric interface{}
		if p := pricing.NormalizeString(c.Price); p.Known {
			numeric = p.Value
		}
		row := []interface{}{
			c.ID, c.Make, c.Model, c.Year, c.Price, numeric, c.Mileage, c.Location,
			c.Condition, c.BodyType, c.Transmission, c.FuelType, c.DriveType, c.Status,
			c.SellerName, c.SellerEmail, c.SellerPhone, len(c.Images), c.CreatedAt.Format("2006-01-02 15:04"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(inventorySheet, cell, &row); err != nil {
			return errors.Wrapf(err, "write row %d", i+2)
		}
	}
	if err := f.SetPanes(inventorySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return errors.Wrap(err, "freeze header")
	}
	return errors.Wrap(f.Write(w), "write workbook")
}
