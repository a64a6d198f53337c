package service

import (
	"bytes"
	"html/template"
)

// Email bodies are small self-contained HTML fragments parsed once at init.
var emailTemplates = template.Must(template.New("emails").Parse(`
{{define "invitation"}}
<h2>You are invited to join MemberHub</h2>
<p>Use the invitation code below to start your registration:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px">{{.Code}}</p>
<p><a href="{{.Link}}">Open the registration form</a></p>
<p>The code is valid for one registration and expires in {{.TTLDays}} days.</p>
{{end}}

{{define "verification"}}
<h2>Verify your email</h2>
<p>Hi {{.Name}},</p>
<p>Confirm your email address by clicking the link below:</p>
<p><a href="{{.Link}}">Verify my email</a></p>
<p>Or enter this code on the verification page:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px">{{.Code}}</p>
<p>The link and code expire in {{.TTLMins}} minutes.</p>
{{end}}

{{define "password_reset"}}
<h2>Reset your password</h2>
<p>Hi {{.Name}},</p>
<p>We received a request to reset your password. Click the link below:</p>
<p><a href="{{.Link}}">Reset my password</a></p>
<p>Or enter this code on the reset page:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px">{{.Code}}</p>
<p>The link and code expire in {{.TTLMins}} minutes. If you did not request
this, you can ignore this email.</p>
{{end}}

{{define "status_approved"}}
<h2>Your application was approved</h2>
<p>Hi {{.Name}},</p>
<p>Welcome aboard! Your membership application has been approved and your
account is now fully active.</p>
{{end}}

{{define "status_rejected"}}
<h2>Your application was not approved</h2>
<p>Hi {{.Name}},</p>
<p>Unfortunately your membership application was not approved.</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}
<p>You may contact the club administrators if you believe this is a mistake.</p>
{{end}}

{{define "applicant_alert"}}
<h2>Applicant awaiting review</h2>
{{if .Reason}}<p>{{.Reason}}</p>{{end}}
<table cellpadding="4">
<tr><td>Name</td><td>{{.FullName}}</td></tr>
<tr><td>Email</td><td>{{.Email}}</td></tr>
<tr><td>Student ID</td><td>{{.StudentID}}</td></tr>
<tr><td>Session</td><td>{{.Session}}</td></tr>
<tr><td>Batch</td><td>{{.Batch}}</td></tr>
<tr><td>Department</td><td>{{.Department}}</td></tr>
<tr><td>Contact</td><td>{{.ContactNumber}}</td></tr>
</table>
{{if .ImageURL}}<p><img src="{{.ImageURL}}" alt="profile photo" width="120"></p>{{end}}
{{if .ProfileLink}}<p><a href="{{.ProfileLink}}">Review the application</a></p>{{end}}
{{end}}
`))

func renderEmail(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
