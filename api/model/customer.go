/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/blnkfinance/vault/model"
)

type CreateCustomer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Document  string `json:"document"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type UpdateCustomer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (c *CreateCustomer) ValidateCreateCustomer() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&c.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&c.Document, validation.Required, validation.Length(1, 20)),
		validation.Field(&c.Email, validation.Length(0, 100), is.EmailFormat),
		validation.Field(&c.Phone, validation.Length(0, 20)),
	)
}

func (c *UpdateCustomer) ValidateUpdateCustomer() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&c.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&c.Email, validation.Length(0, 100), is.EmailFormat),
		validation.Field(&c.Phone, validation.Length(0, 20)),
	)
}

func (c *CreateCustomer) ToCustomer() model.Customer {
	return model.Customer{FirstName: c.FirstName, LastName: c.LastName, Document: c.Document, Email: c.Email, Phone: c.Phone}
}
