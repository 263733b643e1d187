package document

const sampleContract = `RESIDENTIAL RENTAL AGREEMENT

This Rental Agreement is made on 15th December 2023 between Mr. Rajesh Kumar
("Landlord") and Ms. Priya Sharma ("Tenant") for the premises at Flat 304,
Green Valley Apartments, Bengaluru.

1. TERM: The lease shall be for a period of 12 months commencing January 1, 2024.

2. RENT: The Tenant shall pay a monthly rent of ₹25,000 due on the 1st of each month.

3. SECURITY DEPOSIT: The Tenant shall pay a security deposit of ₹75,000 (3 months rent),
refundable at the end of the lease subject to deductions for damages.

4. LATE PAYMENT: A late fee of ₹500 per day after 5 days grace period shall be charged
on overdue rent.

5. RENT INCREASE: Rent shall increase by 10% annually after first year.

6. EARLY TERMINATION: If the Tenant terminates before 6 months, a penalty of 2 months
rent shall be payable.

7. REPAIRS: The Tenant is responsible for minor repairs under ₹5,000. Major repairs are
the responsibility of the Landlord.

8. PETS AND SUBLETTING: No pets or subletting without the written approval of the Landlord.

9. INSPECTION: The Landlord may inspect the premises with 24-hour notice.

10. GOVERNING LAW: This agreement is governed by the laws of India.

Signed: ______________ (Landlord)          ______________ (Tenant)
`
