package store

import (
	"context"
	"time"

	"clinic-booking-api/internal/model"
)

const apptSelect = `
	SELECT a.id, a.patient_id, a.doctor_id, a.start_time, a.end_time, a.reason, a.status, a.created_at,
	       p.id, p.first_name, p.last_name, p.phone, p.email, p.dob, p.notes, p.created_at,
	       u.id, u.email, u.full_name, u.role
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	JOIN users u ON u.id = a.doctor_id`

func scanAppointment(row interface{ Scan(dest ...any) error }) (*model.Appointment, error) {
	a := &model.Appointment{Patient: &model.Patient{}, Doctor: &model.UserSummary{}}
	err := row.Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.StartTime, &a.EndTime, &a.Reason, &a.Status, &a.CreatedAt,
		&a.Patient.ID, &a.Patient.FirstName, &a.Patient.LastName, &a.Patient.Phone,
		&a.Patient.Email, &a.Patient.DOB, &a.Patient.Notes, &a.Patient.CreatedAt,
		&a.Doctor.ID, &a.Doctor.Email, &a.Doctor.FullName, &a.Doctor.Role,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func (s *Appointments) Create(ctx context.Context, a *model.Appointment) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO appointments (id, patient_id, doctor_id, start_time, end_time, reason, status)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.PatientID, a.DoctorID, a.StartTime, a.EndTime, a.Reason, a.Status,
	)
	return mapErr(err)
}

func (s *Appointments) ByID(ctx context.Context, id string) (*model.Appointment, error) {
	return scanAppointment(s.pool.QueryRow(ctx, apptSelect+` WHERE a.id = $1`, id))
}

func (s *Appointments) Update(ctx context.Context, a *model.Appointment) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE appointments
		 SET patient_id=$2, doctor_id=$3, start_time=$4, end_time=$5, reason=$6, status=$7
		 WHERE id=$1`,
		a.ID, a.PatientID, a.DoctorID, a.StartTime, a.EndTime, a.Reason, a.Status,
	)
	return mapErr(err)
}

func (s *Appointments) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	return err
}

func (s *Appointments) List(ctx context.Context, from, to *time.Time) ([]model.Appointment, error) {
	q := apptSelect
	args := []any{}
	where := ""
	if from != nil {
		args = append(args, *from)
		where = ` WHERE a.start_time >= $1`
	}
	if to != nil {
		args = append(args, *to)
		if where == "" {
			where = ` WHERE a.start_time < $1`
		} else {
			where += ` AND a.start_time < $2`
		}
	}
	q += where + ` ORDER BY a.start_time`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// HasOverlap reports whether a non-cancelled appointment for the doctor
// intersects [start, end). Touching endpoints do not conflict.
func (s *Appointments) HasOverlap(ctx context.Context, doctorID string, start, end time.Time, excludeID string) (bool, error) {
	q := `SELECT EXISTS(
		SELECT 1 FROM appointments
		WHERE doctor_id = $1
		  AND status <> 'CANCELLED'
		  AND start_time < $3
		  AND end_time > $2`

	args := []any{doctorID, start, end}

	if excludeID != "" {
		q += ` AND id != $4`
		args = append(args, excludeID)
	}
	q += `)`

	var exists bool
	err := s.pool.QueryRow(ctx, q, args...).Scan(&exists)
	return exists, err
}
