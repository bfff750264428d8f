package appointment

import "github.com/cliniga/cliniga-api/internal/model"

// transition pairs a source status with a target status.
type transition struct {
	from model.AppointmentStatus
	to   model.AppointmentStatus
}

// transitionTable is the single authority for which actor role may
// move an appointment between statuses. Ownership of the appointment
// is checked separately; completion is absent on purpose, it only
// happens through medical record creation.
var transitionTable = map[transition][]model.Role{
	{model.AppointmentStatusPending, model.AppointmentStatusConfirmed}:   {model.RoleDoctor},
	{model.AppointmentStatusPending, model.AppointmentStatusCancelled}:   {model.RoleDoctor, model.RolePatient},
	{model.AppointmentStatusConfirmed, model.AppointmentStatusCancelled}: {model.RoleDoctor, model.RolePatient},
}

func transitionAllowed(from, to model.AppointmentStatus, role model.Role) bool {
	roles, ok := transitionTable[transition{from, to}]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
